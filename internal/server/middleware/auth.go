package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/invtracker/internal/server/handlers"
	"github.com/iudanet/invtracker/internal/server/jwt"
)

// TokenValidator проверяет access token. Реализуется *jwt.Service.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// Authenticate создает middleware для проверки bearer токена.
// Без валидного токена отвечает 401 с JSON телом и WWW-Authenticate.
func Authenticate(logger *slog.Logger, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.DebugContext(ctx, "missing or malformed authorization header", slog.String("path", r.URL.Path))
				unauthorized(w, logger, `Bearer`, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				// Сам токен в лог не пишем
				logger.InfoContext(ctx, "access token rejected", slog.Any("error", err))
				unauthorized(w, logger, `Bearer error="invalid_token"`, "invalid or expired access token")
				return
			}

			ctx = handlers.WithUser(ctx, claims.UserID, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из "Bearer <token>"
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger, challenge, message string) {
	w.Header().Set("WWW-Authenticate", challenge)
	handlers.WriteError(w, logger, message, http.StatusUnauthorized)
}
