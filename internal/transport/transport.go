package transport

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"photo-enhancer/internal/transport/middleware"
)

// enhanceTimeoutSeconds bounds one enhancement request end to end.
// Denoise on large uploads is the slow path.
const enhanceTimeoutSeconds = 60

func InitRoutes(handler *EnhanceHandler, logger *logrus.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Timeout(enhanceTimeoutSeconds))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/enhance", handler.Enhance)
		api.POST("/enhance/preview", handler.Preview)
		api.GET("/status", handler.Status)
		api.GET("/operations", handler.Operations)
	}

	// Health check
	router.GET("/health", handler.Health)

	return router
}
