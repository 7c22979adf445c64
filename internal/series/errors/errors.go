package errors

import "errors"

var (
	ErrNotFound = errors.New("recurring series not found")

	ErrInvalidID = errors.New("invalid series ID format")
)
