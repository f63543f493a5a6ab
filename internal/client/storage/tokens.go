package storage

import (
	"context"
)

//go:generate moq -out tokens_mock.go . TokenStorage

// TokenStorage is the lowest persistence layer for the session credential.
// It stores values as-is: tokens arrive already encrypted and no
// encryption/decryption happens here.
type TokenStorage interface {
	// SaveTokens replaces the stored pair in a single write.
	SaveTokens(ctx context.Context, tokens *TokenData) error

	// GetTokens returns the stored pair.
	// Returns ErrTokensNotFound if nothing is stored.
	GetTokens(ctx context.Context) (*TokenData, error)

	// DeleteTokens removes the stored pair. Deleting an empty store is not an error.
	DeleteTokens(ctx context.Context) error
}

// TokenData is the persisted credential pair.
// In storage the tokens are base64 ciphertext; auth.TokenStore is the only
// layer that sees them in plaintext.
type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SavedAt      int64  `json:"saved_at"`
}
