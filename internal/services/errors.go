// Package services defines the business logic for the live wishlist, the
// archive, and bulk transfer. This file centralizes service-level error
// values so they can be consistently returned by service methods and
// mapped to HTTP responses at the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound indicates that the referenced live item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrArchiveEntryNotFound indicates that the referenced archive entry
	// does not exist (it may already have been restored).
	ErrArchiveEntryNotFound = errors.New("archive entry not found")

	// ErrInvalidDirection is returned when a move request names a direction
	// other than "up" or "down".
	ErrInvalidDirection = errors.New("direction must be \"up\" or \"down\"")

	// ErrEmptyPatch is returned when an update request contains no
	// recognizable fields to change.
	ErrEmptyPatch = errors.New("no updatable fields supplied")
)

// ConfirmationRequiredError is returned when a bulk import would replace a
// non-empty live list and the caller did not explicitly confirm. It carries
// the number of items that would be archived so clients can show an
// accurate warning.
type ConfirmationRequiredError struct {
	ExistingCount int64
}

// Error implements the error interface.
func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("import would replace %d existing items; confirmation required", e.ExistingCount)
}
