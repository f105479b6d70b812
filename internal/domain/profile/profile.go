package profile

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FullName    *string   `json:"full_name,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateRequest carries only the fields present in the request body; nil
// means "leave as is".
type UpdateRequest struct {
	FullName    *string `json:"full_name" binding:"omitempty,max=120"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
	Bio         *string `json:"bio" binding:"omitempty,max=2000"`
	Image       *string `json:"image" binding:"omitempty,url"`
}
