package message

import (
	"net/http"

	"github.com/DhavalSuthar-24/padel/internal/common"
	"github.com/DhavalSuthar-24/padel/internal/middleware"
	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/gin-gonic/gin"
)

type MessageController struct {
	repo Repository
}

func NewMessageController(repo Repository) *MessageController {
	return &MessageController{repo: repo}
}

// GetConversation godoc
// @Summary      Conversation with a user
// @Description  Messages exchanged with peerId, oldest first. New messages arrive over the websocket.
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        peerId    path  int true  "Other user's ID"
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} responses.PaginatedResponse{data=[]Message}
// @Router       /messages/{peerId} [get]
func (mc *MessageController) GetConversation(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	peerID, ok := common.ParseIDParam(c, "peerId")
	if !ok {
		responses.BadRequest(c, "Invalid user ID")
		return
	}
	page, pageSize := common.GetPagination(c)

	messages, total, err := mc.repo.Conversation(c.Request.Context(), userID, peerID, page, pageSize)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	responses.SendPaginated(c, http.StatusOK, "Conversation retrieved", messages, total, page, pageSize)
}

// GetUnread godoc
// @Summary      Unread message counts
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} responses.SuccessResponse{data=[]UnreadCount}
// @Router       /messages/unread [get]
func (mc *MessageController) GetUnread(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	counts, err := mc.repo.UnreadCounts(c.Request.Context(), userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	if counts == nil {
		counts = []UnreadCount{}
	}
	responses.SendSuccess(c, http.StatusOK, "Unread counts retrieved", counts)
}
