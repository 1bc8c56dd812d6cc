package mail

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// StateStore holds pending OAuth flows keyed by an unguessable state
// token. Entries expire after a TTL and are swept by a background
// goroutine, so abandoned connect attempts cannot accumulate.
type StateStore struct {
	mu      sync.Mutex
	entries map[string]pendingFlow
	ttl     time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

type pendingFlow struct {
	config    *oauth2.Config
	createdAt time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	s := &StateStore{
		entries: make(map[string]pendingFlow),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put registers a pending flow and returns its state token.
func (s *StateStore) Put(cfg *oauth2.Config) string {
	token := newStateToken()
	s.mu.Lock()
	s.entries[token] = pendingFlow{config: cfg, createdAt: time.Now()}
	s.mu.Unlock()
	return token
}

// Take removes and returns the flow for a state token. Expired or
// unknown tokens report false; a token is single-use either way.
func (s *StateStore) Take(token string) (*oauth2.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.entries[token]
	if !ok {
		return nil, false
	}
	delete(s.entries, token)
	if time.Since(flow.createdAt) > s.ttl {
		return nil, false
	}
	return flow.config, true
}

// Len returns the number of pending flows.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *StateStore) sweep() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *StateStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for token, flow := range s.entries {
		if flow.createdAt.Before(cutoff) {
			delete(s.entries, token)
		}
	}
}

// Stop shuts down the eviction goroutine.
func (s *StateStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func newStateToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand never fails on supported platforms; bail loudly
		// rather than hand out a guessable token.
		panic("state token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}
