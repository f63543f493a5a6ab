// Package servertest starts the development backend on an in-memory
// database for tests of code that talks to it.
package servertest

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iudanet/invtracker/internal/server"
	"github.com/iudanet/invtracker/internal/server/config"
	"github.com/iudanet/invtracker/internal/server/storage/sqlite"
)

// Option adjusts the server config before start.
type Option func(*config.Config)

// WithAccessTTL shortens or lengthens access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(c *config.Config) { c.AccessTokenTTL = ttl }
}

// WithLoginRateLimit sets auth attempts allowed per minute.
func WithLoginRateLimit(n int) Option {
	return func(c *config.Config) { c.LoginRateLimit = n }
}

// New starts a server and registers its shutdown with t.Cleanup.
func New(t testing.TB, opts ...Option) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DBPath = ":memory:"
	cfg.JWTSecret = "servertest-secret-0123456789abcdef"
	cfg.LoginRateLimit = 1000
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("servertest: invalid config: %v", err)
	}

	store, err := sqlite.New(context.Background(), cfg.DBPath)
	if err != nil {
		t.Fatalf("servertest: open storage: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(cfg, store, logger, "test")
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		_ = store.Close()
	})
	return ts
}
