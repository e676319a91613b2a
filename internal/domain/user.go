// Package domain contains entities without logic, just meta-data and validation.
package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	MaxUsernameLen = 36
	MaxPasswordLen = 72 // bcrypt input limit
)

// Username identifies a chat participant. It is unique among live
// sessions only; Account identity is unique forever.
type Username string

// NewUsername is a tiny helper to avoid ad-hoc validation in adapters.
func NewUsername(raw string) (Username, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: username empty", ErrValidation)
	}
	if len(raw) > MaxUsernameLen {
		return "", fmt.Errorf("%w: username too long", ErrValidation)
	}
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("%w: username is not valid utf-8", ErrValidation)
	}
	return Username(raw), nil
}

func (u Username) String() string { return string(u) }

// Account is a registered user. PasswordHash may be empty for accounts
// that were created without credentials; those cannot log in.
type Account struct {
	Username     Username
	PasswordHash string
	CreatedAt    time.Time
}

func (a Account) HasPassword() bool { return a.PasswordHash != "" }
