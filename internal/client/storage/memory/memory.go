// Package memory is an in-process implementation of the client storage
// interfaces. Nothing survives a restart; it backs tests and -ephemeral runs.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/iudanet/invtracker/internal/client/storage"
)

// Storage keeps tokens and metadata in memory.
type Storage struct {
	tokens   *storage.TokenData
	metadata map[string][]byte
	mu       sync.RWMutex
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{metadata: make(map[string][]byte)}
}

// SaveTokens replaces the stored pair.
func (s *Storage) SaveTokens(ctx context.Context, tokens *storage.TokenData) error {
	if tokens == nil {
		return fmt.Errorf("tokens cannot be nil")
	}
	cp := *tokens

	s.mu.Lock()
	s.tokens = &cp
	s.mu.Unlock()
	return nil
}

// GetTokens returns a copy of the stored pair or storage.ErrTokensNotFound.
func (s *Storage) GetTokens(ctx context.Context) (*storage.TokenData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokens == nil {
		return nil, storage.ErrTokensNotFound
	}
	cp := *s.tokens
	return &cp, nil
}

// DeleteTokens drops the stored pair.
func (s *Storage) DeleteTokens(ctx context.Context) error {
	s.mu.Lock()
	s.tokens = nil
	s.mu.Unlock()
	return nil
}

// SaveMetadata stores a copy of value under key.
func (s *Storage) SaveMetadata(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("metadata key cannot be empty")
	}

	s.mu.Lock()
	s.metadata[key] = bytes.Clone(value)
	s.mu.Unlock()
	return nil
}

// GetMetadata returns a copy of the value under key or storage.ErrMetadataNotFound.
func (s *Storage) GetMetadata(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.metadata[key]
	if !ok {
		return nil, storage.ErrMetadataNotFound
	}
	return bytes.Clone(v), nil
}

// Close is a no-op, present so Storage can stand in for the bbolt store.
func (s *Storage) Close() error { return nil }
