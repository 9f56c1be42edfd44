// Package history provides bounded in-memory conversation memory.
//
// History is deliberately not persisted: the bot keeps a short rolling
// window of recent turns per channel for model context, nothing more.
package history

import (
	"sync"

	"github.com/tawada/discord-AI-bot/chat"
)

// DefaultCapacity is the number of turns a ring retains when no explicit
// capacity is configured.
const DefaultCapacity = 10

// Ring is a fixed-capacity ordered buffer of conversation turns with FIFO
// eviction: once full, appending drops the oldest turn.
//
// Ring is safe for concurrent use. Append applies a whole batch atomically
// so that the user turn, injected context turns, and the assistant turn of
// one request never interleave with another request's batch. Snapshot
// returns a consistent copy for building the next request's context.
type Ring struct {
	mu       sync.RWMutex
	capacity int
	turns    []chat.Message
}

// NewRing creates a ring with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity}
}

// Append adds the turns as one atomic batch, evicting from the front when
// capacity is exceeded.
func (r *Ring) Append(turns ...chat.Message) {
	if len(turns) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.turns = append(r.turns, turns...)
	if overflow := len(r.turns) - r.capacity; overflow > 0 {
		r.turns = append([]chat.Message(nil), r.turns[overflow:]...)
	}
}

// Snapshot returns a copy of the retained turns, oldest first.
func (r *Ring) Snapshot() []chat.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]chat.Message, len(r.turns))
	copy(out, r.turns)
	return out
}

// Len returns the number of retained turns.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.turns)
}

// Store hands out per-channel rings, or one shared ring when configured
// that way (the original single-buffer behavior, which bleeds context
// across channels).
type Store struct {
	mu       sync.RWMutex
	rings    map[string]*Ring
	capacity int
	shared   bool
}

// NewStore creates a store. When shared is true every channel resolves to
// the same ring.
func NewStore(capacity int, shared bool) *Store {
	return &Store{
		rings:    make(map[string]*Ring),
		capacity: capacity,
		shared:   shared,
	}
}

// Ring returns the ring for the given channel, creating it on first use.
func (s *Store) Ring(channelID string) *Ring {
	key := channelID
	if s.shared {
		key = ""
	}

	s.mu.RLock()
	ring, ok := s.rings[key]
	s.mu.RUnlock()
	if ok {
		return ring
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ring, ok = s.rings[key]; ok {
		return ring
	}
	ring = NewRing(s.capacity)
	s.rings[key] = ring
	return ring
}
