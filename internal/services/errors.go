package services

import "errors"

var (
	// ErrEmailTaken maps to HTTP 409; detected from the store's unique
	// constraint, never from a pre-insert lookup.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidResetToken covers absent, already used, and expired tokens.
	ErrInvalidResetToken = errors.New("invalid or already used token")
)
