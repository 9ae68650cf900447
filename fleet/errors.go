/*
errors.go - Centralized error types for the fleet engine

PURPOSE:
  All core error conditions in one place. Every failure is a local,
  recoverable condition returned to the caller; no operation partially
  mutates state on failure (construct-then-commit discipline).

ERROR CATEGORIES:
  1. Resolution errors - No vehicle assigned, no applicable price
  2. Validation errors - Invalid or duplicate assignment intervals
  3. Lifecycle errors  - Illegal state transitions
  4. Lookup errors     - Missing ids

USAGE:
  if errors.Is(err, fleet.ErrNoVehicleAssigned) {
      // tell the operator to assign a vehicle first
  }
*/
package fleet

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoVehicleAssigned is returned by fuel request creation when the
	// assignment ledger resolves no vehicle for the driver on the date.
	ErrNoVehicleAssigned = errors.New("no vehicle assigned")

	// ErrNoApplicablePrice is returned by approve/correct when the price
	// timeline is empty.
	ErrNoApplicablePrice = errors.New("no applicable price")

	// ErrInvalidInterval is returned on assignment writes where end < start.
	ErrInvalidInterval = errors.New("invalid interval: end before start")

	// ErrDuplicateInterval is returned on an exact (driver, vehicle, start)
	// repeat.
	ErrDuplicateInterval = errors.New("duplicate assignment interval")

	// ErrInvalidStateTransition is returned when approve/reject targets a
	// request that is not pending, or a correction targets a non-full-tank
	// approval.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotFound is returned when an operation references an id absent from
	// its collection.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCommand is returned when a command fails input validation
	// before touching any store.
	ErrInvalidCommand = errors.New("invalid command")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoVehicleAssignedError identifies the driver and date that failed to
// resolve.
type NoVehicleAssignedError struct {
	DriverID DriverID
	On       Date
}

func (e *NoVehicleAssignedError) Error() string {
	return fmt.Sprintf("no vehicle assigned to driver %s on %s", e.DriverID, e.On)
}

func (e *NoVehicleAssignedError) Unwrap() error { return ErrNoVehicleAssigned }

// NoApplicablePriceError identifies the lookup instant that failed.
type NoApplicablePriceError struct {
	At time.Time
}

func (e *NoApplicablePriceError) Error() string {
	return fmt.Sprintf("no applicable fuel price at %s", e.At.Format(time.RFC3339))
}

func (e *NoApplicablePriceError) Unwrap() error { return ErrNoApplicablePrice }

// StateTransitionError describes an illegal lifecycle move.
type StateTransitionError struct {
	RequestID string
	From      RequestStatus
	Attempted string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s in status %s", e.Attempted, e.RequestID, e.From)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid operator input
// or a precondition the operator can fix.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoVehicleAssigned) ||
		errors.Is(err, ErrNoApplicablePrice) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrDuplicateInterval) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrInvalidCommand)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
