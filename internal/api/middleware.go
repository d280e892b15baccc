package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/config"
	"github.com/Gopher0727/TripMate/internal/handler"
	"github.com/Gopher0727/TripMate/middleware/jwt"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/utils/ratelimit"
)

// RequestIDHeader carries the trace id in and out of every request.
const RequestIDHeader = "X-Request-ID"

type MiddlewareManager struct {
	tokenManager *jwt.TokenManager
	rateLimiter  ratelimit.Limiter
	logger       *logger.Logger
	rateLimitCfg *config.RateLimitConfig
}

// NewMiddlewareManager builds the shared middleware. A nil limiter disables rate limiting.
func NewMiddlewareManager(
	tokenManager *jwt.TokenManager,
	rateLimiter ratelimit.Limiter,
	log *logger.Logger,
	rateLimitCfg *config.RateLimitConfig,
) *MiddlewareManager {
	return &MiddlewareManager{
		tokenManager: tokenManager,
		rateLimiter:  rateLimiter,
		logger:       log,
		rateLimitCfg: rateLimitCfg,
	}
}

func (m *MiddlewareManager) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := m.tokenManager.ParseToken(parts[1])
		if err != nil {
			m.logger.WarnContext(c.Request.Context(), "token validation failed",
				zap.Error(err),
				zap.String("ip", c.ClientIP()),
			)
			message := "invalid token"
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "token has expired"
			case errors.Is(err, jwt.ErrTokenNotYetValid):
				message = "token not yet valid"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}

		c.Set(handler.UserIDKey, claims.UserID)
		c.Next()
	}
}

// RateLimit caps write requests per authenticated user within one-minute windows.
func (m *MiddlewareManager) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.rateLimiter == nil || m.rateLimitCfg == nil || !m.rateLimitCfg.Enabled {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		limit := m.rateLimitCfg.WritePerMinute

		var key string
		if userID := c.GetInt64(handler.UserIDKey); userID > 0 {
			key = fmt.Sprintf("user:%d:write", userID)
		} else {
			key = fmt.Sprintf("ip:%s:write", c.ClientIP())
		}

		allowed, err := m.rateLimiter.Allow(ctx, key, limit, time.Minute)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed", zap.Error(err), zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "rate limit check failed"})
			return
		}
		if !allowed {
			remaining, _ := m.rateLimiter.Remaining(ctx, key, limit, time.Minute)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
				"remaining":   remaining,
			})
			return
		}
		c.Next()
	}
}

// Logger tags the request context with a trace id and logs one line per request.
func (m *MiddlewareManager) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := c.GetHeader(RequestIDHeader)
		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, logger.GetTraceID(ctx))

		c.Next()

		statusCode := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if userID := c.GetInt64(handler.UserIDKey); userID > 0 {
			fields = append(fields, zap.Int64("user_id", userID))
		}

		switch {
		case statusCode >= 500:
			m.logger.ErrorContext(ctx, "server error", fields...)
		case statusCode >= 400:
			m.logger.WarnContext(ctx, "client error", fields...)
		default:
			m.logger.InfoContext(ctx, "request completed", fields...)
		}
	}
}

func (m *MiddlewareManager) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.ErrorContext(c.Request.Context(), "panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
