package auth

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps accounts in a map. Accounts are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string][]byte // normalized username -> bcrypt hash
	opts     options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string][]byte),
		opts:     buildOptions(opts),
	}
}

func (s *MemoryStore) CreateAccount(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	key := NormalizeUsername(username)
	hash, err := hashPassword(password, s.opts.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		return ErrUsernameTaken
	}
	s.accounts[key] = hash
	s.opts.logger.Info("Account created", "username", key)
	return nil
}

func (s *MemoryStore) Authenticate(ctx context.Context, username, password string) (bool, error) {
	s.mu.RLock()
	hash, ok := s.accounts[NormalizeUsername(username)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return checkPassword(hash, password), nil
}

// Len returns the number of accounts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

func (s *MemoryStore) Close() error { return nil }
