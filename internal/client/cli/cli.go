// Package cli implements the invtracker subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/iudanet/invtracker/internal/client/api"
	"github.com/iudanet/invtracker/internal/client/app"
	"github.com/iudanet/invtracker/internal/client/auth"
	"github.com/iudanet/invtracker/internal/client/config"
	"github.com/iudanet/invtracker/internal/client/iocli"
	"github.com/iudanet/invtracker/internal/validation"
)

// Runtime is what every command shares: the global flags, the terminal and
// the process environment.
type Runtime struct {
	IO     iocli.IO
	Flags  *config.Flags
	Getenv func(string) string
	// Stderr receives errors and logs.
	Stderr io.Writer
	// AppOptions are passed to app.New.
	AppOptions []app.Option
}

// Register adds the invtracker commands to c.
func Register(c *subcommands.Commander, rt *Runtime) {
	c.Register(&signupCmd{rt: rt}, "session")
	c.Register(&loginCmd{rt: rt}, "session")
	c.Register(&logoutCmd{rt: rt}, "session")
	c.Register(&statusCmd{rt: rt}, "session")

	c.Register(&summaryCmd{rt: rt}, "portfolio")
	c.Register(&acquireCmd{rt: rt}, "portfolio")
	c.Register(&acquisitionsCmd{rt: rt}, "portfolio")
	c.Register(&allocationCmd{rt: rt}, "portfolio")
}

// open resolves the configuration and passphrase and builds the app.
func (rt *Runtime) open(ctx context.Context) (*app.App, error) {
	cfg, err := rt.Flags.Load(rt.Getenv)
	if err != nil {
		return nil, err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(rt.Stderr, &slog.HandlerOptions{Level: level}))

	passphrase, err := rt.passphrase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get store passphrase: %w", err)
	}

	return app.New(ctx, cfg, passphrase, logger, rt.AppOptions...)
}

// passphrase returns the token store passphrase with priority:
// 1. INVTRACKER_PASSPHRASE environment variable
// 2. File from -passphrase-file or the config file
// 3. Interactive prompt (fallback)
// Ephemeral runs need none.
func (rt *Runtime) passphrase(cfg config.Config) (string, error) {
	// Priority 1: Environment variable
	if cfg.Passphrase != "" {
		return cfg.Passphrase, nil
	}

	// Priority 2: File
	if cfg.PassphraseFile != "" {
		content, err := os.ReadFile(cfg.PassphraseFile)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		// Убираем trailing newline/whitespace
		passphrase := strings.TrimSpace(string(content))
		if passphrase == "" {
			return "", fmt.Errorf("passphrase file is empty")
		}
		return passphrase, nil
	}

	if cfg.Ephemeral {
		return "", nil
	}

	// Priority 3: Interactive prompt
	passphrase, err := rt.IO.ReadPassword("Store passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase from stdin: %w", err)
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	return passphrase, nil
}

// run opens the app, calls fn and maps its error to an exit status.
func (rt *Runtime) run(ctx context.Context, fn func(context.Context, *app.App) error) subcommands.ExitStatus {
	a, err := rt.open(ctx)
	if err != nil {
		rt.fail(err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "failed to close app", slog.Any("error", err))
		}
	}()

	if err := fn(ctx, a); err != nil {
		rt.fail(err)
		if errors.Is(err, errUsage) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var (
	errUsage          = errors.New("usage error")
	errNotLoggedIn    = errors.New("not logged in. Run 'invtracker login' first")
	errSessionExpired = errors.New(auth.SessionExpiredMessage + " Run 'invtracker login'.")
)

func (rt *Runtime) fail(err error) {
	_, _ = fmt.Fprintf(rt.Stderr, "Error: %s\n", describe(err))
}

// describe renders err for the terminal.
func describe(err error) string {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.Is(err, errNotLoggedIn):
		return errNotLoggedIn.Error()
	case errors.Is(err, errSessionExpired):
		return errSessionExpired.Error()
	default:
		return api.UserMessage(err)
	}
}

// sessionErr maps a 401 that survived the refresh to errSessionExpired.
func sessionErr(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", errSessionExpired, err)
	}
	return err
}

// requireSession fails fast when no credential is stored.
func requireSession(ctx context.Context, a *app.App) error {
	if !a.Tokens.IsLoggedIn(ctx) {
		return errNotLoggedIn
	}
	return nil
}
