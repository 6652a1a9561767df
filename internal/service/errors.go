package service

import "errors"

var (
	// ErrNotFound marks operations referencing a row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks malformed input rejected before any state change.
	ErrValidation = errors.New("validation failed")
)
