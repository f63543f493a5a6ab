package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/invtracker/pkg/api"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "u@x.com"},
		{name: "valid with plus", email: "user+tag@example.org"},
		{name: "empty", email: "", wantErr: true},
		{name: "spaces only", email: "   ", wantErr: true},
		{name: "no at", email: "userexample.com", wantErr: true},
		{name: "display name", email: "User <u@x.com>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
		wantErr  bool
	}{
		{name: "valid - exactly min length", password: "pw123456"},
		{name: "valid - unicode", password: "şifreşifre"},
		{name: "empty", password: "", wantErr: true, errMsg: "password is required"},
		{name: "too short", password: "short", wantErr: true, errMsg: "at least 8 characters"},
		{name: "too long", password: strings.Repeat("a", 73), wantErr: true, errMsg: "must not exceed 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateSignUp(t *testing.T) {
	valid := api.SignUpRequest{
		Name:            "Ayşe Yılmaz",
		Email:           "u@x.com",
		Password:        "pw123456",
		ConfirmPassword: "pw123456",
	}

	tests := []struct {
		name      string
		mutate    func(r *api.SignUpRequest)
		wantField string
	}{
		{name: "valid", mutate: func(r *api.SignUpRequest) {}},
		{name: "missing name", mutate: func(r *api.SignUpRequest) { r.Name = "  " }, wantField: "name"},
		{name: "long name", mutate: func(r *api.SignUpRequest) { r.Name = strings.Repeat("n", 101) }, wantField: "name"},
		{name: "bad email", mutate: func(r *api.SignUpRequest) { r.Email = "nope" }, wantField: "email"},
		{name: "short password", mutate: func(r *api.SignUpRequest) { r.Password, r.ConfirmPassword = "pw", "pw" }, wantField: "password"},
		{name: "mismatch", mutate: func(r *api.SignUpRequest) { r.ConfirmPassword = "pw654321" }, wantField: "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := ValidateSignUp(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *Error
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin(api.LoginRequest{EmailOrUsername: "u@x.com", Password: "pw123456"}))

	err := ValidateLogin(api.LoginRequest{Password: "pw"})
	assert.EqualError(t, err, "email or username is required")

	err = ValidateLogin(api.LoginRequest{EmailOrUsername: "u"})
	assert.EqualError(t, err, "password is required")
}
