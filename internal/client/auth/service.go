package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	clientapi "github.com/iudanet/invtracker/internal/client/api"
	"github.com/iudanet/invtracker/internal/validation"
	"github.com/iudanet/invtracker/pkg/api"
)

// Service owns the session lifecycle and is the only writer of StateHolder.
type Service struct {
	accounts AccountAPI
	session  SessionAPI
	store    CredentialStore
	state    *StateHolder
	logger   *slog.Logger
	// mu serializes user actions. SessionExpired does not take it: it is
	// called from inside requests those actions make.
	mu sync.Mutex
}

// NewService создает новый сервис авторизации
func NewService(accounts AccountAPI, session SessionAPI, store CredentialStore, state *StateHolder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts: accounts,
		session:  session,
		store:    store,
		state:    state,
		logger:   logger,
	}
}

// State returns the holder the service writes to.
func (s *Service) State() *StateHolder {
	return s.state
}

// Restore re-establishes the session at startup from the stored credential.
// If the server no longer accepts it the credential is dropped.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.IsLoggedIn(ctx) {
		s.state.set(unauthenticated(""))
		return nil
	}

	s.state.set(authenticating(true))

	user, err := s.session.Me(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to restore session", slog.Any("error", err))
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.logger.ErrorContext(ctx, "failed to clear tokens", slog.Any("error", clearErr))
		}
		s.state.set(expired())
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.state.set(authenticated(*user))
	return nil
}

// Login выполняет аутентификацию пользователя
func (s *Service) Login(ctx context.Context, emailOrUsername, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := api.LoginRequest{EmailOrUsername: emailOrUsername, Password: password}
	if err := validation.ValidateLogin(req); err != nil {
		s.state.set(failed(err.Error()))
		return err
	}

	s.state.set(authenticating(false))

	resp, err := s.accounts.Login(ctx, req)
	if err != nil {
		s.logger.InfoContext(ctx, "login failed", slog.Any("error", err))
		s.state.set(failed(clientapi.UserMessage(err)))
		return fmt.Errorf("login failed: %w", err)
	}

	return s.establish(ctx, resp)
}

// SignUp регистрирует нового пользователя и сразу открывает сессию
func (s *Service) SignUp(ctx context.Context, req api.SignUpRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validation.ValidateSignUp(req); err != nil {
		s.state.set(failed(err.Error()))
		return err
	}

	s.state.set(authenticating(false))

	resp, err := s.accounts.SignUp(ctx, req)
	if err != nil {
		s.logger.InfoContext(ctx, "signup failed", slog.Any("error", err))
		s.state.set(failed(clientapi.UserMessage(err)))
		return fmt.Errorf("signup failed: %w", err)
	}

	return s.establish(ctx, resp)
}

// CompleteOAuth opens a session from tokens obtained by an external
// identity provider flow.
func (s *Service) CompleteOAuth(ctx context.Context, resp *api.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp == nil {
		err := errors.New("empty oauth response")
		s.state.set(failed(err.Error()))
		return err
	}
	return s.establish(ctx, resp)
}

func (s *Service) establish(ctx context.Context, resp *api.AuthResponse) error {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		err := fmt.Errorf("%w: response carries no tokens", clientapi.ErrDecode)
		s.state.set(failed(clientapi.UserMessage(err)))
		return err
	}

	if err := s.store.Save(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		s.logger.ErrorContext(ctx, "failed to save tokens", slog.Any("error", err))
		s.state.set(failed("could not store credentials"))
		return err
	}

	s.logger.InfoContext(ctx, "session established", slog.String("user_id", resp.User.ID))
	s.state.set(authenticated(resp.User))
	return nil
}

// Logout выполняет выход из системы
// Сервер уведомляется по возможности, локальные токены удаляются всегда.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.IsLoggedIn(ctx) {
		if err := s.session.Logout(ctx); err != nil {
			// Не прерываем процесс, если сервер недоступен
			s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
		}
	}

	err := s.store.Clear(ctx)
	s.state.set(unauthenticated(""))
	if err != nil {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// SessionExpired is called by the auth pipeline after a refresh failure.
// The store is already empty at that point.
func (s *Service) SessionExpired() {
	s.logger.Info("session expired")
	s.state.set(expired())
}
