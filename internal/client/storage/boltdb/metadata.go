package boltdb

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/invtracker/internal/client/storage"
)

// SaveMetadata stores value under key in the metadata bucket
func (s *Storage) SaveMetadata(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("metadata key cannot be empty")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if err := bucket.Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to save metadata %q: %w", key, err)
		}

		return nil
	})
}

// GetMetadata returns a copy of the value stored under key.
// Returns storage.ErrMetadataNotFound if the key is absent.
func (s *Storage) GetMetadata(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		raw := bucket.Get([]byte(key))
		if raw == nil {
			return storage.ErrMetadataNotFound
		}

		// Копируем: срез bbolt живёт только до конца транзакции
		value = bytes.Clone(raw)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}
