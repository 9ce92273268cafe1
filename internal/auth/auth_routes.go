package auth

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func RegisterAuthRoutes(router *gin.RouterGroup, repo AuthRepository, secret string, expiry time.Duration, logger zerolog.Logger) {
	authController := NewAuthController(repo, secret, expiry, logger)

	authPublic := router.Group("/auth")
	{
		authPublic.POST("/register", authController.Register)
		authPublic.POST("/login", authController.Login)
	}
}
