package auth

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an unused session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Sessions maps bearer tokens to usernames. Each successful Resolve slides
// the expiry forward.
type Sessions struct {
	mu     sync.Mutex
	clock  quartz.Clock
	ttl    time.Duration
	tokens map[string]session
	// nextSweep is when Issue next drops expired tokens.
	nextSweep time.Time
}

type session struct {
	username  string
	expiresAt time.Time
}

// NewSessions creates an empty session table. A non-positive ttl uses
// DefaultSessionTTL.
func NewSessions(clock quartz.Clock, ttl time.Duration) *Sessions {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{clock: clock, ttl: ttl, tokens: make(map[string]session)}
}

// Issue returns a new token for username.
func (s *Sessions) Issue(username string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now)
	}
	s.tokens[token] = session{username: NormalizeUsername(username), expiresAt: now.Add(s.ttl)}
	return token
}

// sweepLocked drops every expired token, resolved or not.
func (s *Sessions) sweepLocked(now time.Time) {
	for token, sess := range s.tokens {
		if !now.Before(sess.expiresAt) {
			delete(s.tokens, token)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

// Len returns the number of tokens held, including expired ones not yet swept.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Resolve returns the username bound to token.
func (s *Sessions) Resolve(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	now := s.clock.Now()
	if !now.Before(sess.expiresAt) {
		delete(s.tokens, token)
		return "", false
	}
	sess.expiresAt = now.Add(s.ttl)
	s.tokens[token] = sess
	return sess.username, true
}

// Revoke forgets token.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
