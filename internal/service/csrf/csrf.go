package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

// TokenKey names the token in secure storage.
const TokenKey = "csrf-token"

// HeaderName carries the token on mutating requests.
const HeaderName = "X-CSRF-Token"

const tokenBytes = 32

// SecureStore is the subset of the secure storage wrapper this service uses.
type SecureStore interface {
	SetItem(ctx context.Context, key string, value any) error
	GetItem(ctx context.Context, key string, out any) error
}

// Service owns the workspace's anti-forgery token.
type Service struct {
	store SecureStore

	mu    sync.RWMutex
	token string
}

func NewService(store SecureStore) *Service {
	return &Service{store: store}
}

// Init loads the persisted token, generating and storing a new one when none
// can be read.
func (s *Service) Init(ctx context.Context) error {
	var token string
	err := s.store.GetItem(ctx, TokenKey, &token)
	if err == nil && token != "" {
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		return nil
	}
	if _, rerr := s.Reset(ctx); rerr != nil {
		return errors.Join(err, rerr)
	}
	return nil
}

func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Reset replaces the token. The new token is in effect even if persisting fails.
func (s *Service) Reset(ctx context.Context) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.store.SetItem(ctx, TokenKey, token); err != nil {
		return token, fmt.Errorf("storing csrf token: %w", err)
	}
	return token, nil
}

// Validate reports whether token matches. It is false before Init.
func (s *Service) Validate(token string) bool {
	s.mu.RLock()
	current := s.token
	s.mu.RUnlock()
	return current != "" && subtle.ConstantTimeCompare([]byte(current), []byte(token)) == 1
}
