package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/invtracker/internal/client/storage"
	"github.com/iudanet/invtracker/internal/crypto"
)

// StoreSaltKey is the metadata key of the token store key-derivation salt.
const StoreSaltKey = "store_salt"

// TokenStore implements CredentialStore on top of storage.TokenStorage.
// Tokens are encrypted with AES-256-GCM before they reach storage and
// decrypted on the way out.
type TokenStore struct {
	storage storage.TokenStorage
	logger  *slog.Logger
	now     func() time.Time
	key     []byte
	mu      sync.RWMutex
}

// Compile-time check that TokenStore implements CredentialStore
var _ CredentialStore = (*TokenStore)(nil)

// NewTokenStore creates a TokenStore. key must be crypto.KeySize bytes,
// usually the result of DeriveStoreKey.
func NewTokenStore(s storage.TokenStorage, key []byte, logger *slog.Logger) (*TokenStore, error) {
	if len(key) != crypto.KeySize {
		return nil, crypto.ErrInvalidKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{
		storage: s,
		key:     key,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Save шифрует оба токена и записывает их одной операцией
func (s *TokenStore) Save(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return fmt.Errorf("both tokens are required")
	}

	encAccess, err := crypto.EncryptString(accessToken, s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := crypto.EncryptString(refreshToken, s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.storage.SaveTokens(ctx, &storage.TokenData{
		AccessToken:  encAccess,
		RefreshToken: encRefresh,
		SavedAt:      s.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// AccessToken returns the decrypted access token.
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	return s.read(ctx, func(t *storage.TokenData) string { return t.AccessToken })
}

// RefreshToken returns the decrypted refresh token.
func (s *TokenStore) RefreshToken(ctx context.Context) (string, error) {
	return s.read(ctx, func(t *storage.TokenData) string { return t.RefreshToken })
}

func (s *TokenStore) read(ctx context.Context, field func(*storage.TokenData) string) (string, error) {
	s.mu.RLock()
	tokens, err := s.storage.GetTokens(ctx)
	s.mu.RUnlock()

	if errors.Is(err, storage.ErrTokensNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tokens: %w", err)
	}

	encrypted := field(tokens)
	if encrypted == "" {
		return "", ErrNoCredential
	}
	token, err := crypto.DecryptString(encrypted, s.key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return token, nil
}

// Clear удаляет оба токена
func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.DeleteTokens(ctx); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a readable access token is stored.
func (s *TokenStore) IsLoggedIn(ctx context.Context) bool {
	_, err := s.AccessToken(ctx)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrNoCredential) {
		s.logger.WarnContext(ctx, "token store unreadable, treating as logged out",
			slog.Any("error", err))
	}
	return false
}

// DeriveStoreKey returns the TokenStore key for passphrase. The salt is
// created on first use and kept in metadata, so the same passphrase opens
// the same store across runs.
func DeriveStoreKey(ctx context.Context, meta storage.MetadataStorage, passphrase string) ([]byte, error) {
	salt, err := meta.GetMetadata(ctx, StoreSaltKey)
	switch {
	case errors.Is(err, storage.ErrMetadataNotFound):
		// Первый запуск: генерируем соль и сохраняем
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := meta.SaveMetadata(ctx, StoreSaltKey, salt); err != nil {
			return nil, fmt.Errorf("failed to save store salt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load store salt: %w", err)
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}
	return key, nil
}
