package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict covers uniqueness violations.
	ErrConflict = errors.New("conflict")
	// ErrPersistence covers store failures.
	ErrPersistence = errors.New("persistence failure")
	ErrNotFound    = errors.New("not found")

	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrAccountExists      = fmt.Errorf("%w: username already registered", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid credentials")
)
