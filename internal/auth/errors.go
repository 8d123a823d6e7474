package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotBootstrapped     = errors.New("admin credentials not bootstrapped")
	ErrAlreadyBootstrapped = errors.New("admin credentials already bootstrapped")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidProfile      = errors.New("invalid profile")
	ErrSessionNotFound     = errors.New("session not found")
)
