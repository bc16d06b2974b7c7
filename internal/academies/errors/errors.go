package errors

import "errors"

var (
	ErrNotFound = errors.New("academy not found")

	ErrInvalidID = errors.New("invalid academy ID format")

	ErrDuplicateEmail = errors.New("academy email already registered")
)
