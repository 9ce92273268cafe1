package realtime

import (
	"github.com/DhavalSuthar-24/padel/pkg/rmiddleware"
	"github.com/gin-gonic/gin"
)

// RealtimeRoutes mounts the websocket endpoint on ws and the admin
// diagnostics on api.
func RealtimeRoutes(ws gin.IRoutes, api *gin.RouterGroup, handler *Handler, registry *Registry, authMiddleware gin.HandlerFunc) {
	ws.GET("/ws", handler.Connect)

	realtimeController := NewRealtimeController(registry)
	admin := api.Group("/admin")
	admin.Use(authMiddleware, rmiddleware.AdminMiddleware())
	{
		admin.GET("/realtime", realtimeController.GetDiagnostics)
	}
}
