// Package app wires the client object graph: storage, token store, REST
// clients, the auth pipeline and the services on top of them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gregjones/httpcache"

	"github.com/iudanet/invtracker/internal/client/api"
	"github.com/iudanet/invtracker/internal/client/auth"
	"github.com/iudanet/invtracker/internal/client/config"
	"github.com/iudanet/invtracker/internal/client/portfolio"
	"github.com/iudanet/invtracker/internal/client/storage"
	"github.com/iudanet/invtracker/internal/client/storage/boltdb"
	"github.com/iudanet/invtracker/internal/client/storage/memory"
	"github.com/iudanet/invtracker/internal/client/transport"
)

// ErrPassphraseRequired is returned when a persistent store is opened
// without a passphrase.
var ErrPassphraseRequired = errors.New("token store passphrase is required")

// backend is what a local store has to provide.
type backend interface {
	storage.TokenStorage
	storage.MetadataStorage
	Close() error
}

// App holds the long-lived client components. Build it with New and release
// it with Close.
type App struct {
	Auth      *auth.Service
	Portfolio *portfolio.Service
	Tokens    *auth.TokenStore
	Logger    *slog.Logger

	store  backend
	public *api.Client
	authed *api.Client
}

// Option customizes New.
type Option func(*options)

type options struct {
	base http.RoundTripper
}

// WithBaseTransport sets the transport under the cache and auth layers.
// Tests point it at an httptest server.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// New builds the object graph for cfg. passphrase unlocks the token store;
// it may be empty only for ephemeral runs.
func New(ctx context.Context, cfg config.Config, passphrase string, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, store, passphrase, logger, o)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "failed to close storage", slog.Any("error", closeErr))
		}
		return nil, err
	}
	return a, nil
}

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	if cfg.Ephemeral {
		return memory.New(), nil
	}
	s, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return s, nil
}

func build(ctx context.Context, cfg config.Config, store backend, passphrase string, logger *slog.Logger, o options) (*App, error) {
	if passphrase == "" {
		if !cfg.Ephemeral {
			return nil, ErrPassphraseRequired
		}
		// Память процесса: ключ живет только до выхода
		passphrase = "ephemeral"
	}

	key, err := auth.DeriveStoreKey(ctx, store, passphrase)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenStore(store, key, logger)
	if err != nil {
		return nil, err
	}

	// Обычный клиент: signup/login/refresh идут мимо auth pipeline
	public := api.NewClient(cfg.ServerURL,
		api.WithHTTPClient(&http.Client{Transport: o.base}),
		api.WithTimeout(cfg.RequestTimeout),
	)
	refresher := auth.NewRefresher(public, tokens, logger)

	base := o.base
	if cfg.CacheResponses {
		cache := httpcache.NewMemoryCacheTransport()
		cache.Transport = o.base
		base = cache
	}

	state := auth.NewStateHolder()
	a := &App{
		Tokens: tokens,
		Logger: logger,
		store:  store,
		public: public,
	}

	pipeline := transport.New(tokens, refresher,
		transport.WithBase(base),
		transport.WithLogger(logger),
		transport.WithRefreshTimeout(cfg.RefreshTimeout),
		transport.WithSessionExpired(func() {
			if a.Auth != nil {
				a.Auth.SessionExpired()
			}
		}),
	)

	a.authed = api.NewClient(cfg.ServerURL,
		api.WithHTTPClient(&http.Client{Transport: pipeline}),
		api.WithTimeout(cfg.RequestTimeout),
	)
	a.Auth = auth.NewService(public, a.authed, tokens, state, logger)
	a.Portfolio = portfolio.NewService(a.authed, logger)

	return a, nil
}

// ServerURL returns the backend the app talks to.
func (a *App) ServerURL() string {
	return a.public.BaseURL()
}

// Close releases the local store.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
