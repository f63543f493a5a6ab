package auth

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/iudanet/invtracker/pkg/api"
)

// fakeAPI реализует AccountAPI, SessionAPI и RefreshAPI
type fakeAPI struct {
	loginResp   *api.AuthResponse
	signUpResp  *api.AuthResponse
	refreshResp *api.AuthResponse
	meUser      *api.User
	loginErr    error
	signUpErr   error
	refreshErr  error
	meErr       error
	logoutErr   error

	mu           sync.Mutex
	lastLogin    api.LoginRequest
	lastSignUp   api.SignUpRequest
	lastRefresh  string
	loginCalls   atomic.Int32
	signUpCalls  atomic.Int32
	refreshCalls atomic.Int32
	meCalls      atomic.Int32
	logoutCalls  atomic.Int32
}

func (f *fakeAPI) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	f.loginCalls.Add(1)
	f.mu.Lock()
	f.lastLogin = req
	f.mu.Unlock()
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResponse, error) {
	f.signUpCalls.Add(1)
	f.mu.Lock()
	f.lastSignUp = req
	f.mu.Unlock()
	return f.signUpResp, f.signUpErr
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error) {
	f.refreshCalls.Add(1)
	f.mu.Lock()
	f.lastRefresh = refreshToken
	f.mu.Unlock()
	return f.refreshResp, f.refreshErr
}

func (f *fakeAPI) Me(ctx context.Context) (*api.User, error) {
	f.meCalls.Add(1)
	return f.meUser, f.meErr
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	return f.logoutErr
}

func testUser() api.User {
	return api.User{
		ID:           "user-1",
		Name:         "Test User",
		Email:        "u@x.com",
		BaseCurrency: "TRY",
		Timezone:     "Europe/Istanbul",
	}
}

func authResponse(access, refresh string) *api.AuthResponse {
	return &api.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    api.DefaultTokenType,
		User:         testUser(),
	}
}
