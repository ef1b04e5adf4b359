package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrAlreadyExists      = errors.New("already exists")
	ErrEmailTaken         = fmt.Errorf("email %w", ErrAlreadyExists)
	ErrUsernameTaken      = fmt.Errorf("username %w", ErrAlreadyExists)
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidInput is wrapped by the field errors below. Trimming can
	// shorten a value that passed request validation.
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidTitle    = fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
	ErrInvalidUsername = fmt.Errorf("%w: username must be 3-50 characters", ErrInvalidInput)
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	maxTitleLen    = 200
)
