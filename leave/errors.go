/*
errors.go - Centralized error types for the leave core

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Other packages wrap these with additional context and classify them
  with errors.Is.

USAGE:
    if errors.Is(err, leave.ErrTypeNotFound) {
        // 404
    }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateKey is returned when a ledger key does not decode to a
	// calendar day.
	ErrInvalidDateKey = errors.New("invalid date key")

	// ErrInvalidPeriod is returned for a period outside full/morning/afternoon.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidCategory is returned for a category outside leave/event.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrTypeNotFound is returned when a referenced leave type doesn't exist.
	ErrTypeNotFound = errors.New("leave type not found")

	// ErrRuleNotFound is returned when a referenced recurrence rule doesn't exist.
	ErrRuleNotFound = errors.New("recurrence rule not found")

	// ErrNegativeQuota is returned when a quota write carries a negative value.
	ErrNegativeQuota = errors.New("quota must be non-negative")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownTypeError reports a ledger or quota operation against a type id
// that is not in the registry.
type UnknownTypeError struct {
	TypeID string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("leave type not found: %q", e.TypeID)
}

func (e *UnknownTypeError) Unwrap() error { return ErrTypeNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTypeNotFound) || errors.Is(err, ErrRuleNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateKey) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrNegativeQuota)
}
