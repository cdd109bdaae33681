// Package identity is the sandbox backend's user registry.
package identity

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrInvalidMobile     = errors.New("mobile number must be 10 digits starting with 6-9")
)

// User is a registered patient account keyed by mobile number.
type User struct {
	ID           string
	Name         string
	Mobile       string
	Email        string
	Gender       string
	DeviceID     string
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Mobile   string `validate:"required,len=10,numeric"`
	Gender   string `validate:"required,oneof=male female other Male Female Other"`
	DeviceID string
}
