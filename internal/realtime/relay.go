package realtime

import (
	"context"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Relay handles the frames of authenticated connections. Processing errors
// are answered with an error frame; the connection is never closed here.
type Relay struct {
	registry *Registry
	messages message.Repository
	now      func() time.Time
	logger   zerolog.Logger
}

func NewRelay(registry *Registry, messages message.Repository, logger zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		messages: messages,
		now:      time.Now,
		logger:   logger.With().Str("component", "relay").Logger(),
	}
}

// HandleFrame processes one frame sent by userID over origin.
func (r *Relay) HandleFrame(ctx context.Context, userID uint, origin Peer, data []byte) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		r.logger.Debug().Err(err).Uint("user_id", userID).Msg("malformed frame")
		origin.Send(errorFrame("malformed frame"))
		return
	}

	switch in.Type {
	case TypeMessage:
		r.relayMessage(ctx, userID, origin, in)
	case TypeMarkAsRead:
		r.markAsRead(ctx, userID, origin, in)
	case TypePing:
		origin.Send(encode(Pong{Type: TypePong}))
	default:
		r.logger.Debug().Str("type", in.Type).Uint("user_id", userID).Msg("unsupported frame type")
		origin.Send(errorFrame("unsupported frame type"))
	}
}

func (r *Relay) relayMessage(ctx context.Context, senderID uint, origin Peer, in Inbound) {
	content := strings.TrimSpace(in.Content)
	switch {
	case in.ReceiverID == 0:
		origin.Send(errorFrame("receiverId is required"))
		return
	case content == "":
		origin.Send(errorFrame("content is required"))
		return
	case len(content) > message.MaxContentLength:
		origin.Send(errorFrame("content is too long"))
		return
	}

	receiverID := uint(in.ReceiverID)
	m := &message.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  r.now().UTC(),
	}
	if err := r.messages.Insert(ctx, m); err != nil {
		r.logger.Error().Err(err).Uint("sender_id", senderID).Uint("receiver_id", receiverID).Msg("failed to store message")
		origin.Send(errorFrame("failed to store message"))
		return
	}

	peer, online := r.registry.Lookup(receiverID)
	if !online {
		r.logger.Debug().Uint("message_id", m.ID).Uint("receiver_id", receiverID).Msg("receiver offline, message stored")
		return
	}
	delivered := peer.Send(encode(ReceiveMessage{
		Type:      TypeReceiveMessage,
		MessageID: m.ID,
		SenderID:  senderID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}))
	if !delivered {
		r.logger.Warn().Uint("message_id", m.ID).Uint("receiver_id", receiverID).Msg("delivery dropped, message stored")
	}
}

func (r *Relay) markAsRead(ctx context.Context, readerID uint, origin Peer, in Inbound) {
	if in.UserID == 0 {
		origin.Send(errorFrame("userId is required"))
		return
	}
	senderID := uint(in.UserID)

	n, err := r.messages.MarkRead(ctx, senderID, readerID)
	if err != nil {
		r.logger.Error().Err(err).Uint("sender_id", senderID).Uint("reader_id", readerID).Msg("failed to mark messages read")
		origin.Send(errorFrame("failed to mark messages read"))
		return
	}
	r.logger.Debug().Int64("count", n).Uint("sender_id", senderID).Uint("reader_id", readerID).Msg("messages marked read")

	if peer, online := r.registry.Lookup(senderID); online {
		peer.Send(encode(MessagesRead{Type: TypeMessagesRead, UserID: readerID}))
	}
}
