package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/config"
	"github.com/Gopher0727/TripMate/internal/api"
	"github.com/Gopher0727/TripMate/internal/handler"
	"github.com/Gopher0727/TripMate/internal/pkg/kafka"
	"github.com/Gopher0727/TripMate/internal/pkg/redis"
	"github.com/Gopher0727/TripMate/internal/service"
	"github.com/Gopher0727/TripMate/internal/storage"
	"github.com/Gopher0727/TripMate/internal/utils"
	"github.com/Gopher0727/TripMate/middleware/jwt"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/utils/ratelimit"
	"github.com/Gopher0727/TripMate/utils/snowflake"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Close()

	ids, err := snowflake.NewGenerator(cfg.Snowflake.WorkerID)
	if err != nil {
		appLogger.Fatal("failed to init id generator", zap.Error(err))
	}

	store, closeStore, err := storage.Open(cfg)
	if err != nil {
		appLogger.Fatal("failed to open store", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer closeStore()

	// Redis backs the cache and the rate limiter; without it both are skipped.
	var (
		cache   service.CompanionCache
		limiter ratelimit.Limiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			appLogger.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redis.NewCompanionCache(redisClient.GetClient(), redisClient.CacheTTL(), appLogger)
			limiter = ratelimit.NewFixedWindowLimiter(redisClient.GetClient(), appLogger.Logger, cfg.RateLimit.FailOpen)
		}
	}

	var publisher service.EventPublisher = service.NewLogPublisher(appLogger)
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(&cfg.Kafka)
		if err != nil {
			appLogger.Warn("kafka unavailable, companion events will only be logged", zap.Error(err))
		} else {
			events := kafka.NewEventPublisher(producer, cfg.Kafka.Topic, appLogger)
			defer events.Close()
			publisher = events
		}
	}

	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appLogger.Logger)
	pool.Start()
	defer pool.Stop()

	svc := service.New(service.Dependencies{
		Store:     store,
		IDs:       ids,
		Cache:     cache,
		Publisher: publisher,
		Pool:      pool,
		Logger:    appLogger,
	})

	gin.SetMode(cfg.Server.Mode)
	middleware := api.NewMiddlewareManager(
		jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours),
		limiter,
		appLogger,
		&cfg.RateLimit,
	)
	router := api.NewRouter(middleware, api.Handlers{
		Trips:        handler.NewTripHandler(svc.Trips, appLogger),
		Companions:   handler.NewCompanionHandler(svc.Companions, appLogger),
		Applications: handler.NewApplicationHandler(svc.Applications, appLogger),
		Chat:         handler.NewChatHandler(svc.Chat, appLogger),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("server listening", zap.Int("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
