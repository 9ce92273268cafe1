package realtime

import (
	"net/http"
	"time"

	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/gin-gonic/gin"
)

// Diagnostics reports the state of the live session registry.
type Diagnostics struct {
	ActiveConnections int       `json:"active_connections"`
	Clients           []uint    `json:"clients"`
	Timestamp         time.Time `json:"timestamp"`
}

type RealtimeController struct {
	registry *Registry
}

func NewRealtimeController(registry *Registry) *RealtimeController {
	return &RealtimeController{registry: registry}
}

// GetDiagnostics godoc
// @Summary Live connection diagnostics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=Diagnostics}
// @Failure 403 {object} responses.ErrorResponse
// @Router /admin/realtime [get]
func (rc *RealtimeController) GetDiagnostics(c *gin.Context) {
	clients := rc.registry.Snapshot()
	responses.SendSuccess(c, http.StatusOK, "Realtime diagnostics", Diagnostics{
		ActiveConnections: len(clients),
		Clients:           clients,
		Timestamp:         time.Now().UTC(),
	})
}
