package auth

import "errors"

var (
	// ErrNoCredential is returned when the store holds no token.
	ErrNoCredential = errors.New("no stored credential")

	// ErrRefreshFailed wraps every refresh failure. The store has been
	// cleared by the time it is returned.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// SessionExpiredMessage is shown after the server stops accepting the
// stored credential.
const SessionExpiredMessage = "Session expired. Please log in again."
