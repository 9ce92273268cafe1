package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is one authenticated websocket connection. It owns a read pump
// that feeds the relay and a write pump that drains the send queue and
// probes liveness.
type Client struct {
	id     string
	userID uint
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	alive  atomic.Bool

	opts     Options
	registry *Registry
	relay    *Relay
	logger   zerolog.Logger
}

func newClient(conn *websocket.Conn, userID uint, opts Options, registry *Registry, relay *Relay, logger zerolog.Logger) *Client {
	id := uuid.NewString()
	c := &Client{
		id:       id,
		userID:   userID,
		conn:     conn,
		send:     make(chan []byte, opts.SendBuffer),
		done:     make(chan struct{}),
		opts:     opts,
		registry: registry,
		relay:    relay,
		logger:   logger.With().Str("conn_id", id).Uint("user_id", userID).Logger(),
	}
	c.alive.Store(true)
	return c
}

// Send queues frame for the write pump. A full queue drops the frame.
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("buffer", cap(c.send)).Msg("send buffer full, frame dropped")
		return false
	}
}

// Close stops the write pump, which closes the socket. Safe to call more
// than once.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.registry.Remove(c.userID, c)
		c.Close()
		c.logger.Info().Msg("client disconnected")
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.OperationTimeout)
		c.relay.HandleFrame(ctx, c.userID, c, data)
		cancel()
	}
}

// writePump is the only writer on the socket. Each tick it terminates the
// connection if no pong arrived since the previous ping, then pings again.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				c.Close()
				return
			}
		case <-ticker.C:
			if !c.alive.Swap(false) {
				c.logger.Info().Msg("no pong since last ping, terminating")
				c.registry.Remove(c.userID, c)
				c.Close()
				return
			}
			deadline := time.Now().Add(c.opts.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug().Err(err).Msg("ping failed")
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			deadline := time.Now().Add(c.opts.WriteTimeout)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}
	}
}

// flush writes frames still queued when the client is closed.
func (c *Client) flush() {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
