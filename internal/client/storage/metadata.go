package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage keeps small client-side values that are not credentials,
// such as the salt the token store key is derived from.
type MetadataStorage interface {
	// SaveMetadata stores value under key, overwriting any previous value.
	SaveMetadata(ctx context.Context, key string, value []byte) error

	// GetMetadata returns the value stored under key.
	// Returns ErrMetadataNotFound if the key is absent.
	GetMetadata(ctx context.Context, key string) ([]byte, error)
}
