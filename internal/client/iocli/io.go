// Package iocli abstracts terminal input and output for the CLI commands.
package iocli

//go:generate moq -out io_mock.go . IO

// IO is the terminal as seen by a command.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadInput prints prompt and returns one trimmed line.
	ReadInput(prompt string) (string, error)
	// ReadPassword prints prompt and reads a line without echo when the
	// input is a terminal.
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
