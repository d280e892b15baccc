package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/TripMate/internal/handler"
)

// Handlers groups the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Trips        *handler.TripHandler
	Companions   *handler.CompanionHandler
	Applications *handler.ApplicationHandler
	Chat         *handler.ChatHandler
}

// NewRouter builds the gin engine with global middleware and every route.
func NewRouter(m *MiddlewareManager, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(m.Logger(), m.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders("Authorization", RequestIDHeader)
	corsCfg.AddExposeHeaders(RequestIDHeader)
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	RegisterRoutes(r, m, h)
	return r
}

// RegisterRoutes registers all API routes. Every route needs a bearer token;
// mutating routes are additionally rate limited per user.
func RegisterRoutes(r *gin.Engine, m *MiddlewareManager, h Handlers) {
	api := r.Group("/api/v1")
	api.Use(m.JWTAuth())
	write := m.RateLimit()

	companions := api.Group("/companions")
	{
		companions.GET("", h.Companions.ListCompanions)
		companions.GET("/:id", h.Companions.GetCompanion)
		companions.POST("", write, h.Companions.CreateCompanion)
		companions.PUT("/:id", write, h.Companions.UpdateCompanion)
		companions.DELETE("/:id", write, h.Companions.DeleteCompanion)

		companions.POST("/:id/apply", write, h.Applications.Apply)
		companions.GET("/:id/applications", h.Applications.ListApplications)
		companions.POST("/:id/approve/:userId", write, h.Applications.Approve)
		companions.POST("/:id/reject/:userId", write, h.Applications.Reject)
	}

	trips := api.Group("/trips")
	{
		trips.GET("", h.Trips.ListTrips)
		trips.GET("/mine", h.Trips.ListMyTrips)
		trips.GET("/:id", h.Trips.GetTrip)
		trips.POST("", write, h.Trips.CreateTrip)
		trips.PUT("/:id", write, h.Trips.UpdateTrip)
		trips.DELETE("/:id", write, h.Trips.DeleteTrip)
		trips.GET("/:id/schedules", h.Trips.GetSchedules)
		trips.PUT("/:id/schedules", write, h.Trips.ReplaceSchedules)
	}

	api.GET("/applications/mine", h.Applications.ListMyApplications)

	chat := api.Group("/chat")
	{
		chat.GET("/rooms", h.Chat.ListRooms)
		chat.GET("/rooms/:id", h.Chat.GetRoom)
	}
}
