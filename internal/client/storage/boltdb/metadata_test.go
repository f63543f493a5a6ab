package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/invtracker/internal/client/storage"
)

// createTestMetadataStorage создает временное BoltDB хранилище и инициализирует buckets
func createTestMetadataStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "metadata_test.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestSaveAndGetMetadata(t *testing.T) {
	ctx := context.Background()
	store := createTestMetadataStorage(t)

	_, err := store.GetMetadata(ctx, "store_salt")
	assert.ErrorIs(t, err, storage.ErrMetadataNotFound)

	value := []byte{1, 2, 3, 4}
	require.NoError(t, store.SaveMetadata(ctx, "store_salt", value))

	got, err := store.GetMetadata(ctx, "store_salt")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	// Перезапись
	require.NoError(t, store.SaveMetadata(ctx, "store_salt", []byte{9}))
	got, err = store.GetMetadata(ctx, "store_salt")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)
}

func TestSaveMetadata_EmptyKey(t *testing.T) {
	store := createTestMetadataStorage(t)
	assert.Error(t, store.SaveMetadata(context.Background(), "", []byte("x")))
}

func TestMetadata_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestMetadataStorage(t)

	// Удаляем bucket metadata напрямую
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	_, err = store.GetMetadata(ctx, "k")
	assert.ErrorContains(t, err, "metadata bucket not found")

	err = store.SaveMetadata(ctx, "k", []byte("v"))
	assert.ErrorContains(t, err, "metadata bucket not found")
}
