package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/invtracker/internal/client/storage"
)

var authKey = []byte("current")

// SaveTokens stores the credential pair under a single key, so both tokens
// are written by one transaction.
func (s *Storage) SaveTokens(ctx context.Context, tokens *storage.TokenData) error {
	if tokens == nil {
		return fmt.Errorf("tokens cannot be nil")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		data, err := json.Marshal(tokens)
		if err != nil {
			return fmt.Errorf("failed to marshal tokens: %w", err)
		}

		if err := bucket.Put(authKey, data); err != nil {
			return fmt.Errorf("failed to save tokens: %w", err)
		}

		return nil
	})
}

// GetTokens retrieves the stored credential pair
func (s *Storage) GetTokens(ctx context.Context) (*storage.TokenData, error) {
	var tokens *storage.TokenData

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		data := bucket.Get(authKey)
		if data == nil {
			return storage.ErrTokensNotFound
		}

		// data валидна только внутри транзакции, Unmarshal копирует строки
		tokens = &storage.TokenData{}
		if err := json.Unmarshal(data, tokens); err != nil {
			return fmt.Errorf("failed to unmarshal tokens: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// DeleteTokens removes the stored credential pair (logout).
// Deleting an absent pair is a no-op.
func (s *Storage) DeleteTokens(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAuth)
		if bucket == nil {
			return fmt.Errorf("auth bucket not found")
		}

		if err := bucket.Delete(authKey); err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}

		return nil
	})
}
