package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/fiesta-dev/fiesta/internal/auth"
	"github.com/fiesta-dev/fiesta/internal/handlers"
	"github.com/fiesta-dev/fiesta/internal/metrics"
	"github.com/fiesta-dev/fiesta/internal/middleware"
	"github.com/fiesta-dev/fiesta/internal/types"
)

func NewRouter(h *handlers.Handler, jwtManager *auth.JWTManager, conn *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(metrics.Middleware())

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middleware.RequireAuth(jwtManager, conn)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:party_id", requireAuth, h.WebSocket)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", requireAuth, h.Me)
			authGroup.PUT("/me", requireAuth, h.UpdateProfile)
			authGroup.DELETE("/me", requireAuth, h.DeleteAccount)
			authGroup.POST("/push-token", requireAuth, h.RegisterPushToken)
		}

		parties := api.Group("/parties", requireAuth)
		{
			parties.POST("", h.CreateParty)
			parties.GET("", h.ListParties)
			parties.GET("/:party_id", h.GetParty)
			parties.PUT("/:party_id", h.UpdateParty)
			parties.DELETE("/:party_id", h.DeleteParty)

			// Participant endpoints
			parties.POST("/:party_id/participants", h.AddParticipant)
			parties.DELETE("/:party_id/participants/:user_id", h.RemoveParticipant)

			// Item endpoints
			parties.POST("/:party_id/items", h.AddItem)
			parties.PUT("/:party_id/items/:item_id", h.UpdateItem)
			parties.DELETE("/:party_id/items/:item_id", h.DeleteItem)
		}
	}

	return r
}
