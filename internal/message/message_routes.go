package message

import "github.com/gin-gonic/gin"

func MessageRoutes(router *gin.RouterGroup, repo Repository, authMiddleware gin.HandlerFunc) {
	messageController := NewMessageController(repo)

	messages := router.Group("/messages")
	messages.Use(authMiddleware)
	{
		messages.GET("/unread", messageController.GetUnread)
		messages.GET("/:peerId", messageController.GetConversation)
	}
}
