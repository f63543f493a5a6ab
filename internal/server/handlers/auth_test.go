package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/invtracker/internal/crypto"
	"github.com/iudanet/invtracker/internal/models"
	"github.com/iudanet/invtracker/internal/server/jwt"
	"github.com/iudanet/invtracker/pkg/api"
)

const testPassword = "password123"

type authFixture struct {
	handler *AuthHandler
	users   *mockUserStorage
	tokens  *mockTokenStorage
	jwt     *jwt.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMockUserStorage()
	tokens := newMockTokenStorage()
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return &authFixture{
		handler: NewAuthHandler(setupTestLogger(), users, tokens, jwtService),
		users:   users,
		tokens:  tokens,
		jwt:     jwtService,
	}
}

func (f *authFixture) addUser(t *testing.T, id, name, email string) *models.User {
	t.Helper()
	hash, err := crypto.HashPassword(testPassword)
	require.NoError(t, err)
	user := &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		BaseCurrency: DefaultBaseCurrency,
		Timezone:     DefaultTimezone,
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	f.users.users[id] = user
	return user
}

func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeAuthResponse(t *testing.T, w *httptest.ResponseRecorder) api.AuthResponse {
	t.Helper()
	var resp api.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	f := newAuthFixture(t)

	req := postJSON(t, "/auth/signup", api.SignUpRequest{
		Name:            "Ayşe",
		Email:           "Ayse@Example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	w := httptest.NewRecorder()
	f.handler.SignUp(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeAuthResponse(t, w)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, api.DefaultTokenType, resp.TokenType)
	assert.Equal(t, "Ayşe", resp.User.Name)
	assert.Equal(t, "ayse@example.com", resp.User.Email)
	assert.Equal(t, "TRY", resp.User.BaseCurrency)
	assert.Equal(t, "Europe/Istanbul", resp.User.Timezone)
	assert.False(t, resp.User.EmailVerified)
	assert.NotNil(t, resp.User.Providers)
	_, err := resp.User.CreatedAtTime()
	assert.NoError(t, err)

	claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// Пароль хранится только в виде bcrypt хеша
	stored := f.users.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
	assert.NoError(t, crypto.VerifyPassword(testPassword, stored.PasswordHash))

	// Refresh token хранится только в виде хеша
	hash, err := crypto.HashToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Contains(t, f.tokens.tokens, hash)
}

func TestAuthHandler_SignUp_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     api.SignUpRequest
		wantMsg string
	}{
		{
			name:    "missing name",
			req:     api.SignUpRequest{Email: "a@b.com", Password: testPassword, ConfirmPassword: testPassword},
			wantMsg: "name is required",
		},
		{
			name:    "bad email",
			req:     api.SignUpRequest{Name: "a", Email: "nope", Password: testPassword, ConfirmPassword: testPassword},
			wantMsg: "email is not a valid address",
		},
		{
			name:    "short password",
			req:     api.SignUpRequest{Name: "a", Email: "a@b.com", Password: "short", ConfirmPassword: "short"},
			wantMsg: "at least 8 characters",
		},
		{
			name:    "password mismatch",
			req:     api.SignUpRequest{Name: "a", Email: "a@b.com", Password: testPassword, ConfirmPassword: "password124"},
			wantMsg: "passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			w := httptest.NewRecorder()
			f.handler.SignUp(w, postJSON(t, "/auth/signup", tt.req))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, "Bad Request", resp.Error)
			assert.Contains(t, resp.Message, tt.wantMsg)
			assert.Empty(t, f.users.users)
		})
	}
}

func TestAuthHandler_SignUp_InvalidJSON(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{invalid"))
	w := httptest.NewRecorder()
	f.handler.SignUp(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeError(t, w).Message)
}

func TestAuthHandler_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "first", "taken@example.com")

	w := httptest.NewRecorder()
	f.handler.SignUp(w, postJSON(t, "/auth/signup", api.SignUpRequest{
		Name:            "second",
		Email:           "TAKEN@example.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email address already in use", decodeError(t, w).Message)
	assert.Zero(t, f.tokens.count())
}

func TestAuthHandler_SignUp_StorageError(t *testing.T) {
	f := newAuthFixture(t)
	f.users.createError = errors.New("disk full")

	w := httptest.NewRecorder()
	f.handler.SignUp(w, postJSON(t, "/auth/signup", api.SignUpRequest{
		Name:            "a",
		Email:           "a@b.com",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Детали ошибки хранилища не раскрываются клиенту
	assert.Equal(t, "internal server error", decodeError(t, w).Message)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	tests := []struct {
		name  string
		login string
	}{
		{name: "by email", login: "user@example.com"},
		{name: "by email, different case", login: "USER@example.com"},
		{name: "by name", login: "investor"},
		{name: "surrounding spaces", login: "  investor  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			user := f.addUser(t, "u1", "investor", "user@example.com")

			var lastLoginUser string
			f.users.updateLastLogin = func(ctx context.Context, userID string, loginTime time.Time) error {
				lastLoginUser = userID
				return nil
			}

			w := httptest.NewRecorder()
			f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{
				EmailOrUsername: tt.login,
				Password:        testPassword,
			}))

			require.Equal(t, http.StatusOK, w.Code)
			resp := decodeAuthResponse(t, w)
			assert.Equal(t, user.ID, resp.User.ID)
			assert.Equal(t, "2024-01-02T03:04:05Z", resp.User.CreatedAt)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)
			assert.Equal(t, user.ID, lastLoginUser)
			assert.Equal(t, 1, f.tokens.count())
		})
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		login    string
		password string
	}{
		{name: "unknown user", login: "ghost@example.com", password: testPassword},
		{name: "unknown name", login: "ghost", password: testPassword},
		{name: "wrong password", login: "user@example.com", password: "wrongpassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.addUser(t, "u1", "investor", "user@example.com")

			w := httptest.NewRecorder()
			f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{
				EmailOrUsername: tt.login,
				Password:        tt.password,
			}))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			// Одинаковое сообщение для неизвестного пользователя и неверного пароля
			assert.Equal(t, "invalid credentials", decodeError(t, w).Message)
			assert.Zero(t, f.tokens.count())
		})
	}
}

func TestAuthHandler_Login_EmptyFields(t *testing.T) {
	f := newAuthFixture(t)

	w := httptest.NewRecorder()
	f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{EmailOrUsername: "x"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password is required", decodeError(t, w).Message)
}

func TestAuthHandler_Login_UpdateLastLoginError(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")
	f.users.updateLastLogin = func(ctx context.Context, userID string, loginTime time.Time) error {
		return errors.New("database error")
	}

	w := httptest.NewRecorder()
	f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{
		EmailOrUsername: "investor",
		Password:        testPassword,
	}))

	// Ошибка обновления last login не прерывает вход
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Login_SaveTokenError(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")
	f.tokens.saveError = errors.New("database error")

	w := httptest.NewRecorder()
	f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{
		EmailOrUsername: "investor",
		Password:        testPassword,
	}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func login(t *testing.T, f *authFixture) api.AuthResponse {
	t.Helper()
	w := httptest.NewRecorder()
	f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{
		EmailOrUsername: "user@example.com",
		Password:        testPassword,
	}))
	require.Equal(t, http.StatusOK, w.Code)
	return decodeAuthResponse(t, w)
}

func TestAuthHandler_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")
	first := login(t, f)

	w := httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: first.RefreshToken}))

	require.Equal(t, http.StatusOK, w.Code)
	second := decodeAuthResponse(t, w)
	assert.NotEmpty(t, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, "u1", second.User.ID)
	assert.Equal(t, 1, f.tokens.count())

	// Старый refresh token больше не принимается
	w = httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: first.RefreshToken}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid refresh token", decodeError(t, w).Message)

	// Новый работает
	w = httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: second.RefreshToken}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Refresh_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{name: "empty token", token: "", wantMsg: "refresh token is required"},
		{name: "unknown token", token: "never-issued", wantMsg: "invalid refresh token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			w := httptest.NewRecorder()
			f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: tt.token}))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Message)
		})
	}
}

func TestAuthHandler_Refresh_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")
	resp := login(t, f)

	f.handler.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	w := httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "refresh token expired", decodeError(t, w).Message)
	// Просроченный токен удаляется
	assert.Zero(t, f.tokens.count())
}

func TestAuthHandler_Refresh_UserDeleted(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")
	resp := login(t, f)
	delete(f.users.users, "u1")

	w := httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_StorageErrors(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		f := newAuthFixture(t)
		f.tokens.getError = errors.New("database error")

		w := httptest.NewRecorder()
		f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: "x"}))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		f := newAuthFixture(t)
		f.addUser(t, "u1", "investor", "user@example.com")
		resp := login(t, f)
		f.tokens.deleteError = errors.New("database error")

		w := httptest.NewRecorder()
		f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func authedRequest(method, path, userID string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(WithUser(req.Context(), userID, ""))
}

func TestAuthHandler_Me(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")

	w := httptest.NewRecorder()
	f.handler.Me(w, authedRequest(http.MethodGet, "/auth/me", "u1"))

	require.Equal(t, http.StatusOK, w.Code)
	var user api.User
	require.NoError(t, json.NewDecoder(w.Body).Decode(&user))
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "investor", user.Name)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "TRY", user.BaseCurrency)
}

func TestAuthHandler_Me_Errors(t *testing.T) {
	f := newAuthFixture(t)

	w := httptest.NewRecorder()
	f.handler.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	f.handler.Me(w, authedRequest(http.MethodGet, "/auth/me", "missing"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.users.getUserError = errors.New("database error")
	w = httptest.NewRecorder()
	f.handler.Me(w, authedRequest(http.MethodGet, "/auth/me", "u1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "u1", "investor", "user@example.com")
	f.addUser(t, "u2", "other", "other@example.com")
	resp := login(t, f)
	login(t, f)

	w := httptest.NewRecorder()
	f.handler.Login(w, postJSON(t, "/auth/login", api.LoginRequest{EmailOrUsername: "other", Password: testPassword}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 3, f.tokens.count())

	w = httptest.NewRecorder()
	f.handler.Logout(w, authedRequest(http.MethodPost, "/auth/logout", "u1"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	// Остаются только токены другого пользователя
	assert.Equal(t, 1, f.tokens.count())

	w = httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/auth/refresh", api.RefreshTokenRequest{RefreshToken: resp.RefreshToken}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_Errors(t *testing.T) {
	f := newAuthFixture(t)

	w := httptest.NewRecorder()
	f.handler.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.tokens.deleteError = errors.New("database error")
	w = httptest.NewRecorder()
	f.handler.Logout(w, authedRequest(http.MethodPost, "/auth/logout", "u1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
