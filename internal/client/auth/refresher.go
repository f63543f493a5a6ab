package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Refresher exchanges the stored refresh token for a new credential pair.
// Any failure ends the session: the store is cleared before Refresh returns.
type Refresher struct {
	api    RefreshAPI
	store  CredentialStore
	logger *slog.Logger
}

// NewRefresher creates a Refresher. api must be a client without the auth
// pipeline.
func NewRefresher(api RefreshAPI, store CredentialStore, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{api: api, store: store, logger: logger}
}

// Refresh returns the new access token. Errors wrap ErrRefreshFailed.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	refreshToken, err := r.store.RefreshToken(ctx)
	if err != nil {
		r.clear(ctx)
		if errors.Is(err, ErrNoCredential) {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoCredential)
		}
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	resp, err := r.api.Refresh(ctx, refreshToken)
	if err != nil {
		r.logger.WarnContext(ctx, "token refresh rejected", slog.Any("error", err))
		r.clear(ctx)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		r.logger.WarnContext(ctx, "token refresh returned an empty token")
		r.clear(ctx)
		return "", fmt.Errorf("%w: empty token in response", ErrRefreshFailed)
	}

	if err := r.store.Save(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		r.clear(ctx)
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	r.logger.DebugContext(ctx, "access token refreshed")
	return resp.AccessToken, nil
}

func (r *Refresher) clear(ctx context.Context) {
	if err := r.store.Clear(ctx); err != nil {
		r.logger.ErrorContext(ctx, "failed to clear tokens after refresh failure", slog.Any("error", err))
	}
}
