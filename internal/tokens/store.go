// Package tokens is an in-memory store for short-lived single-use codes,
// keyed token -> (payload, expiry) with a periodic sweep so abandoned codes
// do not accumulate. In a multi-process deployment this moves to a shared
// store; the interface stays the same.
package tokens

import (
	"sync"
	"time"
)

type entry struct {
	payload   string
	expiresAt time.Time
}

type Store struct {
	mu   sync.Mutex
	m    map[string]entry
	nowF func() time.Time
	done chan struct{}
}

// New returns a store whose janitor sweeps expired entries every sweep
// interval. Call Close to stop the janitor.
func New(sweep time.Duration) *Store {
	s := &Store{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
		done: make(chan struct{}),
	}
	go s.janitor(sweep)
	return s
}

func (s *Store) janitor(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := s.nowF()
			s.mu.Lock()
			for k, e := range s.m {
				if !e.expiresAt.After(now) {
					delete(s.m, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Store) Put(token, payload string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = entry{payload: payload, expiresAt: s.nowF().Add(ttl)}
}

// Consume returns the payload and removes the token: a code can be redeemed
// exactly once. Expired or unknown tokens report ok false.
func (s *Store) Consume(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[token]
	if !ok {
		return "", false
	}
	delete(s.m, token)
	if !e.expiresAt.After(s.nowF()) {
		return "", false
	}
	return e.payload, true
}

func (s *Store) Close() {
	close(s.done)
}
