package invoice

import "errors"

var (
	// ErrNotFound indicates the requested invoice does not exist.
	ErrNotFound = errors.New("invoice not found")

	// ErrAlreadyExists indicates an invoice already exists for the exact
	// (lease, periodStart, periodEnd) tuple in a status that forbids
	// regeneration (spec.md §4.6's core immutability rule).
	ErrAlreadyExists = errors.New("invoice already exists for this period")
)
