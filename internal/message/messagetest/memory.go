// Package messagetest provides an in-memory message.Repository for tests.
package messagetest

import (
	"context"
	"sort"
	"sync"

	"github.com/DhavalSuthar-24/padel/internal/message"
)

// Repository is a mutex-guarded message.Repository. Setting Err makes every
// call fail with it.
type Repository struct {
	mu     sync.Mutex
	nextID uint
	rows   []message.Message
	Err    error
}

func New() *Repository {
	return &Repository{}
}

// All returns a copy of every stored message in insertion order.
func (r *Repository) All() []message.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]message.Message(nil), r.rows...)
}

func (r *Repository) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *Repository) Insert(_ context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	m.ID = r.nextID
	r.rows = append(r.rows, *m)
	return nil
}

func (r *Repository) MarkRead(_ context.Context, senderID, receiverID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var n int64
	for i := range r.rows {
		m := &r.rows[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *Repository) Conversation(_ context.Context, a, b uint, page, pageSize int) ([]message.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}
	var all []message.Message
	for _, m := range r.rows {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			all = append(all, m)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *Repository) UnreadCounts(_ context.Context, receiverID uint) ([]message.UnreadCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	bySender := make(map[uint]int64)
	for _, m := range r.rows {
		if m.ReceiverID == receiverID && !m.IsRead {
			bySender[m.SenderID]++
		}
	}
	out := make([]message.UnreadCount, 0, len(bySender))
	for id, n := range bySender {
		out = append(out, message.UnreadCount{SenderID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SenderID < out[j].SenderID })
	return out, nil
}

var _ message.Repository = (*Repository)(nil)
