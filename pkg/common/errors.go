package common

import "errors"

var (
	// ErrInvalidInput marks requests rejected before any store access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks unresolved entities and missing paths.
	ErrNotFound = errors.New("not found")
	// ErrStore marks failures of the graph store collaborator. These are
	// never cached and callers may retry.
	ErrStore = errors.New("graph store failure")
)
