// Package domain holds the relay's value types and their validation.
package domain

import (
	"errors"
	"unicode/utf8"
)

const (
	MaxUserIDLen   = 128
	MaxUsernameLen = 64
	DefaultName    = "Anonymous"
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
)

type UserID string

// Profile is the public identity attached to outbound events
// ("user" on messages, "caller" on call offers).
// Image is nil when the client never supplied an avatar.
type Profile struct {
	ID    UserID  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// NewProfile is a tiny helper to avoid ad-hoc struct literals in handlers.
func NewProfile(id UserID, name, image string) Profile {
	p := Profile{ID: id, Name: ClampName(name)}
	if p.Name == "" {
		p.Name = DefaultName
	}
	if image != "" {
		p.Image = &image
	}
	return p
}

func ValidateUserID(raw string) (UserID, error) {
	if len(raw) == 0 {
		return "", ErrUserIDEmpty
	}
	if len(raw) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	return UserID(raw), nil
}

// ClampName cuts a display name to MaxUsernameLen runes.
func ClampName(name string) string {
	if utf8.RuneCountInString(name) <= MaxUsernameLen {
		return name
	}
	return string([]rune(name)[:MaxUsernameLen])
}
