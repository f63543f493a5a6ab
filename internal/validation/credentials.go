package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/invtracker/pkg/api"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen ограничение bcrypt: всё, что длиннее 72 байт, отбрасывается
	MaxPasswordLen = 72
	// MaxNameLen максимальная длина имени
	MaxNameLen = 100
)

// ValidateEmail checks that email is a bare address such as "u@x.com".
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return newError("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return newError("email", "email is not a valid address")
	}
	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return newError("password", "password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return newError("password", "password must be at least %d characters long", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return newError("password", "password must not exceed %d bytes", MaxPasswordLen)
	}
	return nil
}

// ValidateSignUp checks a sign-up form. Password mismatch is caught here and
// never sent to the server.
func ValidateSignUp(req api.SignUpRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return newError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return newError("name", "name must not exceed %d characters", MaxNameLen)
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return newError("confirmPassword", "passwords do not match")
	}
	return nil
}

// ValidateLogin checks that both login fields are filled in.
func ValidateLogin(req api.LoginRequest) error {
	if strings.TrimSpace(req.EmailOrUsername) == "" {
		return newError("emailOrUsername", "email or username is required")
	}
	if req.Password == "" {
		return newError("password", "password is required")
	}
	return nil
}
