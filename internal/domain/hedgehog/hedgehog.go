package hedgehog

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("hedgehog not found")
	ErrNullColor    = errors.New("color_type cannot be set to null")
	ErrInvalidColor = errors.New("invalid color_type value")
)

type ColorType string

const (
	ColorSaltAndPepper ColorType = "SOLT & PEPPER"
	ColorDarkGrey      ColorType = "DARK GREY"
	ColorChocolate     ColorType = "CHOCOLATE"
)

func (c ColorType) Valid() bool {
	switch c {
	case ColorSaltAndPepper, ColorDarkGrey, ColorChocolate:
		return true
	}
	return false
}

type Hedgehog struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Age         float64   `json:"age"`
	ColorType   ColorType `json:"color_type"`
	Owner       int64     `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=120"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Age         float64   `json:"age" binding:"omitempty,min=0"`
	ColorType   ColorType `json:"color_type" binding:"required"`
}

// UpdateRequest models a partial update: nil pointers mean "keep the stored
// value". color_type is special cased because the API must distinguish an
// absent key from an explicit null, which plain pointer decoding cannot do.
type UpdateRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Age         *float64   `json:"age" binding:"omitempty,min=0"`
	ColorType   *ColorType `json:"color_type"`

	colorTypeNull bool
}

func (u *UpdateRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateRequest

	var decoded alias

	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*u = UpdateRequest(decoded)

	var keys map[string]json.RawMessage

	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	if raw, ok := keys["color_type"]; ok && string(raw) == "null" {
		u.colorTypeNull = true
	}

	return nil
}

// ColorTypeIsNull reports whether the payload carried an explicit
// "color_type": null, which the API rejects (the stored value may never be
// cleared).
func (u *UpdateRequest) ColorTypeIsNull() bool {
	return u.colorTypeNull
}

// ApplyTo merges the provided fields onto the stored row and returns the
// result. Owner and timestamps are never touched by a patch.
func (u *UpdateRequest) ApplyTo(existing Hedgehog) (Hedgehog, error) {
	if u.colorTypeNull {
		return Hedgehog{}, ErrNullColor
	}

	merged := existing

	if u.Name != nil {
		merged.Name = *u.Name
	}

	if u.Description != nil {
		merged.Description = u.Description
	}

	if u.Age != nil {
		merged.Age = *u.Age
	}

	if u.ColorType != nil {
		if !u.ColorType.Valid() {
			return Hedgehog{}, ErrInvalidColor
		}
		merged.ColorType = *u.ColorType
	}

	return merged, nil
}
