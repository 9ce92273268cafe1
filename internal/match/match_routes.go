package match

import (
	"github.com/DhavalSuthar-24/padel/pkg/rmiddleware"
	"github.com/gin-gonic/gin"
)

// MatchRoutes sets up all match-related routes. authMiddleware must put the
// caller's id in the context.
func MatchRoutes(router *gin.RouterGroup, service *Service, sweeper *Sweeper, authMiddleware gin.HandlerFunc) {
	matchController := NewMatchController(service, sweeper)

	authRoutes := router.Group("/matches")
	authRoutes.Use(authMiddleware)
	{
		authRoutes.POST("", matchController.CreateMatch)
		authRoutes.GET("", matchController.GetMatches)
		authRoutes.GET("/joinable", matchController.GetJoinableMatches)
		authRoutes.GET("/:id", matchController.GetMatchByID)
		authRoutes.PUT("/join/:id", matchController.JoinMatch)
		authRoutes.PUT("/savematches/:id", matchController.SaveMatch)
		authRoutes.PUT("/:id", matchController.UpdateMatch)
		authRoutes.DELETE("/:id", matchController.DeleteMatch)
	}

	adminRoutes := router.Group("/admin/matches")
	adminRoutes.Use(authMiddleware, rmiddleware.AdminMiddleware())
	{
		adminRoutes.POST("/sweep", matchController.SweepMatches)
	}
}
