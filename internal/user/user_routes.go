package user

import (
	"github.com/gin-gonic/gin"
)

// UserRoutes mounts the user endpoints on an already authenticated group.
func UserRoutes(router *gin.RouterGroup, repo Repository) {
	userController := NewUserController(repo)

	users := router.Group("/users")
	{
		users.GET("", userController.ListUsers)
		users.GET("/me", userController.GetMe)
		users.PUT("/me", userController.UpdateMe)
		users.GET("/:id", userController.GetUser)
	}
}
