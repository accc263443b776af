package domain

import "errors"

var (
	// ErrNotFound means the referenced entity does not exist, or does not
	// belong to the parent named in the request.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means the caller sent something unusable: a
	// non-positive quantity, an empty cart at checkout, mismatched ids.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict means a uniqueness constraint (email, username) was hit.
	ErrConflict = errors.New("conflict")
)
