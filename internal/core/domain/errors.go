package domain

import "errors"

var (
	// ErrInvalidGridReference is returned for a grid token that is well formed
	// but names a zone, band or 100 km square that does not exist.
	ErrInvalidGridReference = errors.New("invalid grid reference")

	// ErrInvalidEntry is returned for a filter entry with an unknown category
	// or a missing field name.
	ErrInvalidEntry = errors.New("invalid filter entry")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)
