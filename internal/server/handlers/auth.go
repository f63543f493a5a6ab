package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/invtracker/internal/crypto"
	"github.com/iudanet/invtracker/internal/models"
	"github.com/iudanet/invtracker/internal/server/jwt"
	"github.com/iudanet/invtracker/internal/server/storage"
	"github.com/iudanet/invtracker/internal/validation"
	"github.com/iudanet/invtracker/pkg/api"
)

// Defaults for new accounts.
const (
	DefaultBaseCurrency = "TRY"
	DefaultTimezone     = "Europe/Istanbul"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	jwt          *jwt.Service
	now          func() time.Time
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, jwtService *jwt.Service) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		jwt:          jwtService,
		now:          time.Now,
	}
}

// SignUp обрабатывает POST /auth/signup
// Регистрация нового пользователя и выдача токенов
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateSignUp(req); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		BaseCurrency: DefaultBaseCurrency,
		Timezone:     DefaultTimezone,
		CreatedAt:    h.now().UTC(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "email already registered")
			sendError(w, h.logger, "email address already in use", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))
	h.issueTokens(ctx, w, user)
}

// Login обрабатывает POST /auth/login
// Аутентификация по email или имени
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.findUser(ctx, strings.TrimSpace(req.EmailOrUsername))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found")
			sendError(w, h.logger, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := crypto.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		h.logger.WarnContext(ctx, "login failed: wrong password", slog.String("user_id", user.ID))
		sendError(w, h.logger, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, h.now()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))
	h.issueTokens(ctx, w, user)
}

// findUser ищет по email, если ввод похож на email, иначе по имени
func (h *AuthHandler) findUser(ctx context.Context, login string) (*models.User, error) {
	if strings.Contains(login, "@") {
		user, err := h.userStorage.GetUserByEmail(ctx, login)
		if !errors.Is(err, storage.ErrUserNotFound) {
			return user, err
		}
	}
	return h.userStorage.GetUserByName(ctx, login)
}

// Refresh обрабатывает POST /auth/refresh
// Обмен refresh token на новую пару. Старый refresh token удаляется.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		sendError(w, h.logger, "refresh token is required", http.StatusUnauthorized)
		return
	}

	hash, err := crypto.HashToken(req.RefreshToken)
	if err != nil {
		sendError(w, h.logger, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			sendError(w, h.logger, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	// Удаляем старый refresh token до выдачи нового: повторно его не принять
	if err := h.tokenStorage.DeleteRefreshToken(ctx, hash); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			// Параллельный refresh уже использовал этот токен
			sendError(w, h.logger, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.now().After(storedToken.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", storedToken.UserID))
		sendError(w, h.logger, "refresh token expired", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(w, h.logger, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))
	h.issueTokens(ctx, w, user)
}

// Me обрабатывает GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Токен валиден, но пользователя больше нет
			sendError(w, h.logger, "user not found", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, toAPIUser(user), http.StatusOK)
}

// Logout обрабатывает POST /auth/logout
// Удаляет все refresh tokens пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	deletedCount, err := h.tokenStorage.DeleteUserTokens(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user tokens", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out successfully",
		slog.String("user_id", userID),
		slog.Int("tokens_deleted", deletedCount))

	w.WriteHeader(http.StatusNoContent)
}

// issueTokens создает пару токенов, сохраняет хеш refresh token и отвечает AuthResponse
func (h *AuthHandler) issueTokens(ctx context.Context, w http.ResponseWriter, user *models.User) {
	accessToken, err := h.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	refresh, err := h.jwt.GenerateRefreshToken()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	token := &models.RefreshToken{
		TokenHash: refresh.Hash,
		UserID:    user.ID,
		ExpiresAt: refresh.ExpiresAt,
		CreatedAt: h.now(),
	}
	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		TokenType:    api.DefaultTokenType,
		User:         toAPIUser(user),
	}
	sendJSON(w, h.logger, resp, http.StatusOK)
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		BaseCurrency:  u.BaseCurrency,
		Timezone:      u.Timezone,
		CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
		Providers:     []api.OAuthProvider{},
		EmailVerified: u.EmailVerified,
	}
}
