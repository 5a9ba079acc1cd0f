package domain

import "errors"

var (
	// ErrValidation marks user or configuration input that fails a format check.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)
