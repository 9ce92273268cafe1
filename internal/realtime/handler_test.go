package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/message/messagetest"
	"github.com/DhavalSuthar-24/padel/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "realtime-test-secret"

type wsFixture struct {
	server   *httptest.Server
	registry *Registry
	messages *messagetest.Repository
}

func newWSFixture(t *testing.T, opts Options) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &wsFixture{registry: NewRegistry(), messages: messagetest.New()}
	relay := NewRelay(f.registry, f.messages, zerolog.Nop())
	handler := NewHandler(f.registry, relay, token.NewJWTVerifier(testSecret), opts, zerolog.Nop())

	r := gin.New()
	r.GET("/ws", handler.Connect)
	f.server = httptest.NewServer(r)
	t.Cleanup(func() {
		f.registry.Close()
		f.server.Close()
	})
	return f
}

func (f *wsFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// connect dials as userID and consumes the auth_success frame.
func (f *wsFixture) connect(t *testing.T, userID uint) *websocket.Conn {
	t.Helper()
	jwt, err := token.GenerateJWT(userID, "user", testSecret, time.Hour)
	require.NoError(t, err)
	conn := f.dial(t, "?token="+jwt)
	assert.Equal(t, "auth_success", readFrame(t, conn)["type"])
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestConnectRejectsBadTokens(t *testing.T) {
	for name, query := range map[string]string{
		"missing": "",
		"invalid": "?token=not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			f := newWSFixture(t, Options{})
			conn := f.dial(t, query)

			assert.Equal(t, "error", readFrame(t, conn)["type"])

			_, _, err := conn.ReadMessage()
			require.Error(t, err)
			assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
			assert.Equal(t, 0, f.registry.Len())
		})
	}
}

func TestConnectRejectsForeignSecret(t *testing.T) {
	f := newWSFixture(t, Options{})
	jwt, err := token.GenerateJWT(1, "user", "another-secret", time.Hour)
	require.NoError(t, err)
	conn := f.dial(t, "?token="+jwt)

	assert.Equal(t, "error", readFrame(t, conn)["type"])
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}

func TestConnectRejectsDisallowedOrigin(t *testing.T) {
	f := newWSFixture(t, Options{AllowedOrigins: []string{"https://padel.example"}})
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSessionRelaysMessages(t *testing.T) {
	f := newWSFixture(t, Options{})
	alice := f.connect(t, 1)
	bob := f.connect(t, 2)
	assert.Equal(t, []uint{1, 2}, f.registry.Snapshot())

	writeFrame(t, alice, `{"type":"message","receiverId":2,"content":"court 3 at 19:00"}`)

	got := readFrame(t, bob)
	assert.Equal(t, "receiveMessage", got["type"])
	assert.Equal(t, float64(1), got["senderId"])
	assert.Equal(t, "court 3 at 19:00", got["content"])
	assert.NotZero(t, got["messageId"])

	writeFrame(t, bob, `{"type":"markAsRead","userId":1}`)
	assert.Equal(t, map[string]interface{}{"type": "messagesRead", "userId": float64(2)}, readFrame(t, alice))
	assert.True(t, f.messages.All()[0].IsRead)
}

func TestSessionSurvivesBadFrames(t *testing.T) {
	f := newWSFixture(t, Options{})
	alice := f.connect(t, 1)

	writeFrame(t, alice, `garbage`)
	assert.Equal(t, "error", readFrame(t, alice)["type"])

	writeFrame(t, alice, `{"type":"dance"}`)
	assert.Equal(t, "error", readFrame(t, alice)["type"])

	writeFrame(t, alice, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, alice)["type"])
}

func TestReconnectSupersedesPreviousSession(t *testing.T) {
	f := newWSFixture(t, Options{})
	first := f.connect(t, 1)
	second := f.connect(t, 1)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	assert.Equal(t, 1, f.registry.Len())
	writeFrame(t, second, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, second)["type"])
}

func TestDisconnectRemovesSession(t *testing.T) {
	f := newWSFixture(t, Options{})
	alice := f.connect(t, 1)
	require.Equal(t, 1, f.registry.Len())

	require.NoError(t, alice.Close())

	assert.Eventually(t, func() bool { return f.registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUnresponsivePeerIsTerminated(t *testing.T) {
	f := newWSFixture(t, Options{PingInterval: 40 * time.Millisecond})
	f.connect(t, 1)

	// The client never reads again, so pings go unanswered.
	assert.Eventually(t, func() bool { return f.registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestResponsivePeerStaysConnected(t *testing.T) {
	f := newWSFixture(t, Options{PingInterval: 40 * time.Millisecond})
	alice := f.connect(t, 1)

	go func() {
		for {
			// Reading lets the default ping handler answer with a pong.
			if _, _, err := alice.ReadMessage(); err != nil {
				return
			}
		}
	}()

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, f.registry.Len())
}
