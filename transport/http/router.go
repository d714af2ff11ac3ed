package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/addrauth"
)

// SetupRouter sets up the Gin router
func SetupRouter(auth addrauth.Client, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handlers := NewAuthHandlers(auth, logger)

	// Auth routes
	group := router.Group("/addrauth")
	{
		group.POST("/create", handlers.Create)
		group.POST("/verifyChallenge", handlers.VerifyChallenge)
		group.POST("/verifyJWT", handlers.VerifyJWT)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(auth))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
