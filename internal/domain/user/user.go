package user

import (
	"errors"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/domain/profile"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	IsSuperuser   bool      `json:"is_superuser"`
	Salt          string    `json:"-"` // never expose salt or hash in JSON
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=64,username"`
	Password string `json:"password" binding:"required,min=7,max=100"`
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// PublicUser is the response shape: the user row plus an optional freshly
// minted token (registration/login) and the companion profile.
type PublicUser struct {
	User
	Token   *AccessToken     `json:"access_token,omitempty"`
	Profile *profile.Profile `json:"profile,omitempty"`
}
