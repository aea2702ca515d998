// Package session tracks per-sender conversational state for multi-turn
// input flows. State lives only in memory; a process restart drops all
// in-progress flows, which is acceptable for this bot.
package session

import (
	"sync"
	"time"
)

// State is the position of a sender within the conversational flow.
type State int

const (
	// StateIdle means no multi-turn flow is in progress.
	StateIdle State = iota
	// StateAwaitingIncome means the next message is parsed as an income entry.
	StateAwaitingIncome
	// StateAwaitingExpense means the next message is parsed as an expense entry.
	StateAwaitingExpense
	// StateEditing means the next message replaces the record at EditOrdinal.
	StateEditing
)

// Session is the stored value for one sender. EditOrdinal and EditKind are
// only meaningful in StateEditing: they record which row is being replaced
// and which kind its replacement categories are validated against.
type Session struct {
	EditKind    string
	State       State
	EditOrdinal int
}

// Store is the conversation state contract. An absent entry is equivalent
// to an idle session.
type Store interface {
	Get(senderID string) Session
	Set(senderID string, s Session)
	Clear(senderID string)
}

type entry struct {
	session   Session
	lastTouch time.Time
}

// MemoryStore is a mutex-guarded in-memory Store. Entries idle longer than
// the TTL are evicted by a background janitor so abandoned flows do not
// accumulate for the life of the process.
type MemoryStore struct {
	entries map[string]entry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// DefaultTTL is how long an abandoned flow survives before eviction.
const DefaultTTL = 30 * time.Minute

// NewMemoryStore creates a store with the given idle TTL. A zero ttl uses
// DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}

	s := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Get returns the sender's session, or an idle session if none exists or
// the existing one has expired.
func (s *MemoryStore) Get(senderID string) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[senderID]
	if !ok {
		return Session{State: StateIdle}
	}
	if time.Since(e.lastTouch) > s.ttl {
		return Session{State: StateIdle}
	}
	return e.session
}

// Set stores the sender's session and refreshes its idle timer.
func (s *MemoryStore) Set(senderID string, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[senderID] = entry{session: sess, lastTouch: time.Now()}
}

// Clear removes the sender's session.
func (s *MemoryStore) Clear(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, senderID)
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() {
		close(s.stopCh)
	})
}

// cleanup periodically removes expired entries.
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for id, e := range s.entries {
				if now.Sub(e.lastTouch) > s.ttl {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
