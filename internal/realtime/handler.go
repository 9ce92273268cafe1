package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/padel/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Options tunes every connection accepted by a Handler.
type Options struct {
	PingInterval     time.Duration
	WriteTimeout     time.Duration
	OperationTimeout time.Duration
	SendBuffer       int
	MaxMessageBytes  int64
	// AllowedOrigins lists accepted Origin headers. Empty or "*" accepts any.
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		PingInterval:     30 * time.Second,
		WriteTimeout:     10 * time.Second,
		OperationTimeout: 5 * time.Second,
		SendBuffer:       64,
		MaxMessageBytes:  8 << 10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PingInterval <= 0 {
		o.PingInterval = d.PingInterval
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = d.WriteTimeout
	}
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = d.OperationTimeout
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = d.MaxMessageBytes
	}
	return o
}

// Handler upgrades HTTP requests to websocket sessions bound to the
// identity carried by the token query parameter.
type Handler struct {
	registry *Registry
	relay    *Relay
	verifier token.Verifier
	opts     Options
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewHandler(registry *Registry, relay *Relay, verifier token.Verifier, opts Options, logger zerolog.Logger) *Handler {
	opts = opts.withDefaults()
	h := &Handler{
		registry: registry,
		relay:    relay,
		verifier: verifier,
		opts:     opts,
		logger:   logger.With().Str("component", "realtime").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Connect upgrades GET /ws?token=... The first frame is auth_success, or an
// error frame followed by close code 1008.
func (h *Handler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug().Err(err).Str("remote", c.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	raw := c.Query("token")
	if raw == "" {
		h.reject(conn, "authentication token is required")
		return
	}
	identity, err := h.verifier.Verify(raw)
	if err != nil || identity.UserID == 0 {
		h.logger.Debug().Err(err).Str("remote", c.ClientIP()).Msg("websocket authentication failed")
		h.reject(conn, "invalid authentication token")
		return
	}

	client := newClient(conn, identity.UserID, h.opts, h.registry, h.relay, h.logger)
	client.Send(encode(AuthSuccess{Type: TypeAuthSuccess, Message: "authenticated"}))
	if old := h.registry.Register(identity.UserID, client); old != nil {
		h.logger.Info().Uint("user_id", identity.UserID).Msg("superseded previous connection")
	}
	h.logger.Info().Uint("user_id", identity.UserID).Str("conn_id", client.id).Msg("client connected")

	go client.writePump()
	go client.readPump()
}

func (h *Handler) reject(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(h.opts.WriteTimeout)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteMessage(websocket.TextMessage, errorFrame(reason))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	_ = conn.Close()
}
