// Package session keeps transform sessions in memory for the life of the
// process. Nothing touches disk or a database: a restart drops every
// session, and each re-upload replaces the caller's session wholesale.
package session

import (
	"log"
	"sync"
	"time"

	"tablecast/domain/core"
	"tablecast/domain/transform"
)

// Store is an in-memory session store with TTL expiry. Sessions that go
// untouched for the TTL are swept by a janitor goroutine.
type Store struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*transform.Session

	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

// NewStore creates a store and starts its janitor. A non-positive TTL
// disables expiry.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[core.SessionID]*transform.Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

// Save stores or replaces a session under its ID
func (s *Store) Save(sess *transform.Session) {
	if sess == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get retrieves a session by ID
func (s *Store) Get(id core.SessionID) (*transform.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, core.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session; deleting an unknown ID is a no-op
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the janitor. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) janitor() {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.expire(time.Now()); n > 0 {
				log.Printf("[SessionStore] Expired %d idle sessions", n)
			}
		case <-s.stop:
			return
		}
	}
}

// expire drops sessions idle past the TTL and reports how many went
func (s *Store) expire(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
			expired++
		}
	}
	return expired
}
