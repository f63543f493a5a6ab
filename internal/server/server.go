// Package server wires the development backend: storage, handlers,
// middleware and the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/invtracker/internal/server/config"
	"github.com/iudanet/invtracker/internal/server/handlers"
	"github.com/iudanet/invtracker/internal/server/jwt"
	"github.com/iudanet/invtracker/internal/server/middleware"
	"github.com/iudanet/invtracker/internal/server/storage"
)

// Store is everything the handlers need from persistence.
type Store interface {
	storage.UserStorage
	storage.TokenStorage
	storage.AcquisitionStorage
	handlers.Pinger
}

// Server serves the REST API.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   Store
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New builds the router. Close releases the rate limiter.
func New(cfg *config.Config, store Store, logger *slog.Logger, version string) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, cfg.TrustProxy, logger),
	}
	s.handler = s.routes(jwt.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL), version)
	return s
}

func (s *Server) routes(tokens *jwt.Service, version string) http.Handler {
	authHandler := handlers.NewAuthHandler(s.logger, s.store, s.store, tokens)
	portfolioHandler := handlers.NewPortfolioHandler(s.logger, s.store)
	healthHandler := handlers.NewHealthHandler(s.logger, s.store, version)
	authenticate := middleware.Authenticate(s.logger, tokens)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, s.logger, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, s.logger, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Публичные эндпоинты авторизации с rate limiting
	auth := r.PathPrefix("/auth").Subrouter()
	auth.Handle("/signup", s.limiter.Middleware(http.HandlerFunc(authHandler.SignUp))).Methods(http.MethodPost)
	auth.Handle("/login", s.limiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	auth.Handle("/refresh", s.limiter.Middleware(http.HandlerFunc(authHandler.Refresh))).Methods(http.MethodPost)
	// Защищенные
	auth.Handle("/me", authenticate(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)
	auth.Handle("/logout", authenticate(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)
	methodFallback(auth, r.MethodNotAllowedHandler, "/signup", "/login", "/refresh", "/me", "/logout")

	portfolio := r.PathPrefix("/portfolio").Subrouter()
	portfolio.Use(authenticate)
	portfolio.HandleFunc("/summary", portfolioHandler.Summary).Methods(http.MethodGet)
	portfolio.HandleFunc("/acquisitions", portfolioHandler.ListAcquisitions).Methods(http.MethodGet)
	portfolio.HandleFunc("/acquisitions", portfolioHandler.CreateAcquisition).Methods(http.MethodPost)
	portfolio.HandleFunc("/allocation", portfolioHandler.Allocation).Methods(http.MethodGet)
	methodFallback(portfolio, r.MethodNotAllowedHandler, "/summary", "/acquisitions", "/allocation")

	return middleware.Logging(s.logger, "/health")(middleware.Recovery(s.logger)(r))
}

// methodFallback answers 405 on known paths of a subrouter. Inside a
// subrouter gorilla/mux drops a method mismatch once a later route with
// another path is tried, and the request ends up as a 404.
func methodFallback(sub *mux.Router, h http.Handler, paths ...string) {
	for _, p := range paths {
		sub.Handle(p, h)
	}
}

// Handler returns the complete HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops background helpers started by New.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Run listens on cfg.ListenAddr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// Expired refresh tokens are swept in the background meanwhile.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepExpiredTokens(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// sweepExpiredTokens периодически удаляет просроченные refresh tokens
func (s *Server) sweepExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.DeleteExpiredTokens(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				s.logger.InfoContext(ctx, "expired refresh tokens deleted", slog.Int("count", deleted))
			}
		}
	}
}
