package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
)

var _ portkv.Store = (*KV)(nil)

// KV is an in-memory key/value store, used when no state file is configured
// and in tests.
type KV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewKV() *KV {
	return &KV{data: make(map[string]string)}
}

func (s *KV) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", portkv.ErrNotFound
	}
	return v, nil
}

func (s *KV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *KV) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	for k, v := range entries {
		s.data[k] = v
	}
	s.mu.Unlock()
	return nil
}

func (s *KV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *KV) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
