package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrAccountExists      = errors.New("user already exists")
	ErrAccountNotFound    = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrUpstream           = errors.New("upstream service unavailable")
)

// ValidationError describes the first invalid input field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }
