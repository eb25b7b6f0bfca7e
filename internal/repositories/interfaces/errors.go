package interfaces

import "errors"

var (
	// ErrNotFound is returned when no document matches, including documents
	// that exist but belong to another organization.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStatusChanged is returned by conditional status updates when the
	// document is no longer in the expected status.
	ErrStatusChanged = errors.New("status changed concurrently")
)
