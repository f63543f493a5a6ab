// Package validation checks user input before it reaches the network. The
// client and the development server share these rules, so a request the
// client accepts is never rejected by the server for shape alone.
package validation

import "fmt"

// Error is a client-side validation failure. Field names the offending
// input using its JSON name.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}
