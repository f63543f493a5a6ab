package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	ID            string     `json:"id"`            // UUID пользователя
	Name          string     `json:"name"`          // отображаемое имя, можно использовать для входа
	Email         string     `json:"email"`         // уникальный, в нижнем регистре
	PasswordHash  string     `json:"password_hash"` // bcrypt хеш пароля
	BaseCurrency  string     `json:"base_currency"`
	Timezone      string     `json:"timezone"`
	EmailVerified bool       `json:"email_verified"`
}

// RefreshToken представляет refresh token пользователя.
// В базе хранится только SHA-256 хеш значения токена.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	TokenHash string    `json:"token_hash"`
	UserID    string    `json:"user_id"`
}
