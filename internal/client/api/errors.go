package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy of the REST client. Validation failures are reported by the
// validation package before a request is built.
var (
	// ErrTransport wraps network failures: DNS, refused connections, timeouts.
	ErrTransport = errors.New("transport error")

	// ErrDecode wraps a 2xx response whose body does not match the expected shape.
	ErrDecode = errors.New("failed to decode response")

	// ErrUnauthorized matches any ServerError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// ServerError is a non-2xx response.
type ServerError struct {
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *ServerError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// UserMessage renders err as a short human-readable message for status lines.
func UserMessage(err error) string {
	var serverErr *ServerError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &serverErr):
		if serverErr.Message != "" {
			return serverErr.Message
		}
		return http.StatusText(serverErr.StatusCode)
	case errors.Is(err, ErrTransport):
		return "network error, check your connection"
	case errors.Is(err, ErrDecode):
		return "unexpected response from server"
	default:
		return err.Error()
	}
}
