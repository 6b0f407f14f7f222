// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAlreadyExists   = errors.New("already exists")
)
