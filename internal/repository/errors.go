package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a conditional write finds the stored
	// entity in a different state than the caller expected.
	ErrConflict = errors.New("entity changed concurrently")

	// ErrUnavailable is returned when the backing store cannot be reached or
	// gave up on the operation. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)
