// Package transport implements the authenticated request pipeline as an
// http.RoundTripper: bearer injection, one refresh on 401, one retry.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTimeout bounds a refresh shared by concurrent requests.
const DefaultRefreshTimeout = 30 * time.Second

// maxDrain is how much of a discarded 401 body is read to keep the
// connection reusable.
const maxDrain = 64 << 10

// TokenSource yields the current access token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Refresher obtains a new access token. On failure it must leave the token
// store empty.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// AuthTransport attaches the stored access token to every request and, on a
// 401, refreshes it once and replays the request once.
type AuthTransport struct {
	base             http.RoundTripper
	tokens           TokenSource
	refresher        Refresher
	logger           *slog.Logger
	onSessionExpired func()
	group            singleflight.Group
	refreshTimeout   time.Duration
}

// Option configures an AuthTransport.
type Option func(*AuthTransport)

// WithBase sets the transport requests are dispatched on.
func WithBase(base http.RoundTripper) Option {
	return func(t *AuthTransport) {
		if base != nil {
			t.base = base
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *AuthTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithRefreshTimeout bounds the shared refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(t *AuthTransport) {
		if d > 0 {
			t.refreshTimeout = d
		}
	}
}

// WithSessionExpired registers fn to run once per failed refresh.
func WithSessionExpired(fn func()) Option {
	return func(t *AuthTransport) {
		t.onSessionExpired = fn
	}
}

// New creates an AuthTransport.
func New(tokens TokenSource, refresher Refresher, opts ...Option) *AuthTransport {
	t := &AuthTransport{
		base:           http.DefaultTransport,
		tokens:         tokens,
		refresher:      refresher,
		logger:         slog.Default(),
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	req, err := replayable(req)
	if err != nil {
		return nil, err
	}

	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		// Нет токена или хранилище недоступно: отправляем без авторизации
		t.logger.DebugContext(ctx, "sending request without credentials",
			slog.String("path", req.URL.Path), slog.Any("reason", err))
		token = ""
	}

	resp, err := t.send(req, token, false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || token == "" {
		return resp, nil
	}

	newToken, err := t.refresh(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			drain(resp.Body)
			return nil, ctx.Err()
		}
		// Сессия закончилась: отдаём исходный 401 как есть
		return resp, nil
	}

	drain(resp.Body)
	return t.send(req, newToken, true)
}

func (t *AuthTransport) send(req *http.Request, token string, replay bool) (*http.Response, error) {
	out := req.Clone(req.Context())
	if replay && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to replay request body: %w", err)
		}
		out.Body = body
	}
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	return t.base.RoundTrip(out)
}

// refresh shares one refresh among all requests that failed with the same
// stale token. The flight runs detached from the caller's cancellation so a
// caller that gives up never aborts a refresh other callers wait for.
func (t *AuthTransport) refresh(ctx context.Context, stale string) (string, error) {
	ch := t.group.DoChan(stale, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.refreshTimeout)
		defer cancel()

		// Другой запрос уже успел обновить токен
		if current, err := t.tokens.AccessToken(rctx); err == nil && current != "" && current != stale {
			return current, nil
		}

		t.logger.InfoContext(rctx, "access token rejected, refreshing")
		token, err := t.refresher.Refresh(rctx)
		if err != nil {
			t.logger.WarnContext(rctx, "token refresh failed, session ended", slog.Any("error", err))
			if t.onSessionExpired != nil {
				t.onSessionExpired()
			}
			return "", err
		}
		return token, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// replayable makes sure req can be sent twice. Bodies without GetBody are
// read into memory up front.
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(buf))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	out.ContentLength = int64(len(buf))
	return out, nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrain))
	_ = body.Close()
}
