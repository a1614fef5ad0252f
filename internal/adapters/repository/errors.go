package repository

import "errors"

// Sentinel errors for feed storage.
var (
	ErrNotFound  = errors.New("student not found")
	ErrBadSkills = errors.New("malformed skill row")
)
