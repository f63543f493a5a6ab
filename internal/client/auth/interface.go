package auth

import (
	"context"

	"github.com/iudanet/invtracker/pkg/api"
)

//go:generate moq -out credential_store_mock.go . CredentialStore

// CredentialStore holds the session credential in plaintext form for the
// rest of the client. Getters return ErrNoCredential when nothing is stored.
type CredentialStore interface {
	// Save overwrites both tokens at once. A reader never observes the new
	// access token paired with the old refresh token or the reverse.
	Save(ctx context.Context, accessToken, refreshToken string) error

	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)

	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// IsLoggedIn reports whether an access token is stored. Storage errors
	// count as "not logged in".
	IsLoggedIn(ctx context.Context) bool
}

// AccountAPI is the unauthenticated part of the backend used to obtain a
// credential.
type AccountAPI interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
}

// SessionAPI is the bearer-protected part of the backend the session needs.
type SessionAPI interface {
	Me(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
}

// RefreshAPI exchanges a refresh token for a new pair. Implementations must
// not route through the auth pipeline.
type RefreshAPI interface {
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
}
