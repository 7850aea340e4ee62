package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access denied")
	ErrValidation       = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
)
