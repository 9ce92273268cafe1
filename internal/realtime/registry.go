// Package realtime binds authenticated users to their websocket connection
// and relays chat frames between them.
package realtime

import (
	"sort"
	"sync"
)

// Peer is a live connection that frames can be queued on.
type Peer interface {
	// Send queues frame without blocking and reports whether it was queued.
	Send(frame []byte) bool
	Close()
}

// Registry maps a user id to that user's single live connection.
type Registry struct {
	mu    sync.RWMutex
	peers map[uint]Peer
}

func NewRegistry() *Registry {
	return &Registry{peers: make(map[uint]Peer)}
}

// Register binds userID to p. A previous connection for the same user is
// closed and returned.
func (r *Registry) Register(userID uint, p Peer) Peer {
	r.mu.Lock()
	old := r.peers[userID]
	r.peers[userID] = p
	r.mu.Unlock()

	if old != nil && old != p {
		old.Close()
		return old
	}
	return nil
}

func (r *Registry) Lookup(userID uint) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[userID]
	return p, ok
}

// Remove drops userID only while it is still bound to p, so a superseded
// connection shutting down cannot evict its replacement.
func (r *Registry) Remove(userID uint, p Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.peers[userID]; ok && cur == p {
		delete(r.peers, userID)
		return true
	}
	return false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// Snapshot returns the connected user ids in ascending order.
func (r *Registry) Snapshot() []uint {
	r.mu.RLock()
	ids := make([]uint, 0, len(r.peers))
	for id := range r.peers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close closes every connection and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	peers := r.peers
	r.peers = make(map[uint]Peer)
	r.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
}
