package message_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/message"
	"github.com/DhavalSuthar-24/padel/internal/message/messagetest"
	"github.com/DhavalSuthar-24/padel/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func router(repo message.Repository, as uint) *gin.Engine {
	r := gin.New()
	message.MessageRoutes(r.Group("/api"), repo, func(c *gin.Context) {
		c.Set(middleware.AuthUserIDKey, as)
		c.Next()
	})
	return r
}

func get(t *testing.T, r http.Handler, path string, out interface{}) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return w.Code
}

func seed(t *testing.T, repo *messagetest.Repository) {
	t.Helper()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, m := range []message.Message{
		{SenderID: 1, ReceiverID: 2, Content: "hola"},
		{SenderID: 2, ReceiverID: 1, Content: "qué tal"},
		{SenderID: 3, ReceiverID: 1, Content: "partido mañana?"},
		{SenderID: 2, ReceiverID: 1, Content: "a las 18"},
	} {
		m.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Insert(context.Background(), &m))
	}
}

func TestConversationIsOldestFirst(t *testing.T) {
	repo := messagetest.New()
	seed(t, repo)

	var got []message.Message
	require.Equal(t, http.StatusOK, get(t, router(repo, 1), "/api/messages/2", &got))
	require.Len(t, got, 3)
	assert.Equal(t, "hola", got[0].Content)
	assert.Equal(t, "a las 18", got[2].Content)

	require.Equal(t, http.StatusOK, get(t, router(repo, 1), "/api/messages/2?page=2&page_size=2", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a las 18", got[0].Content)

	assert.Equal(t, http.StatusBadRequest, get(t, router(repo, 1), "/api/messages/zero", nil))
}

func TestUnreadCountsPerSender(t *testing.T) {
	repo := messagetest.New()
	seed(t, repo)
	_, err := repo.MarkRead(context.Background(), 3, 1)
	require.NoError(t, err)

	var got []message.UnreadCount
	require.Equal(t, http.StatusOK, get(t, router(repo, 1), "/api/messages/unread", &got))
	assert.Equal(t, []message.UnreadCount{{SenderID: 2, Count: 2}}, got)
}
