package api

import (
	"fmt"
	"time"
)

// DefaultTokenType is the only token type the backend issues.
const DefaultTokenType = "Bearer"

// OAuthProvider identifies an external identity provider linked to a user.
type OAuthProvider string

const (
	OAuthProviderGoogle OAuthProvider = "GOOGLE"
	OAuthProviderApple  OAuthProvider = "APPLE"
)

// User is the server-provided profile snapshot returned by /auth/me and
// embedded in every AuthResponse.
type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	BaseCurrency  string          `json:"baseCurrency"`
	Timezone      string          `json:"timezone"`
	CreatedAt     string          `json:"createdAt"` // ISO-8601, with or without zone
	Providers     []OAuthProvider `json:"providers"`
	EmailVerified bool            `json:"emailVerified"`
}

// createdAtLayouts lists the timestamp shapes the backend is known to emit.
// Zone-less local date-times are read as UTC.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// CreatedAtTime parses CreatedAt.
func (u User) CreatedAtTime() (time.Time, error) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, u.CreatedAt); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized createdAt format %q", u.CreatedAt)
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// RefreshTokenRequest is the body of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	User         User   `json:"user"`
}

// ErrorResponse is the JSON error body. The development backend fills Error and
// Message; problem-detail style backends fill Title and Detail instead.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// Text returns the most specific human-readable message in the body.
func (e ErrorResponse) Text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	default:
		return e.Error
	}
}
