package storage

import "errors"

// Common client storage errors
var (
	// ErrTokensNotFound indicates that no credential is stored
	ErrTokensNotFound = errors.New("tokens not found")

	// ErrMetadataNotFound indicates that a metadata key is absent
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
