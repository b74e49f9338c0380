package errors

import "errors"

var (
	ErrNotFound = errors.New("table not found")

	ErrInvalidID = errors.New("invalid table ID format")

	ErrDuplicateNumber = errors.New("table number already exists")
)
