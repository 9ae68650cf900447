/*
assignments.go - Driver-to-vehicle assignment ledger

PURPOSE:
  Maintains assignment intervals and answers "which vehicle was driver D
  assigned to on date T".

RESOLUTION RULE (latest start wins):
  Filter to intervals for the driver covering the date (start <= T and
  T <= end, or no end). Among matches the interval with the latest start
  wins. Overlapping intervals are legal in the stored data; this rule is
  the sole disambiguation mechanism.

WRITE-PATH INVARIANTS:
  - end, when present, must not precede start (ErrInvalidInterval)
  - an exact (driver, vehicle, start) repeat is rejected
    (ErrDuplicateInterval)
  Overlapping-but-not-identical intervals are stored without complaint.
*/
package fleet

import (
	"context"

	"github.com/google/uuid"
)

// =============================================================================
// ASSIGNMENT STORE - Persistence for intervals
// =============================================================================

type AssignmentStore interface {
	SaveAssignment(ctx context.Context, a AssignmentInterval) error
	ListAssignments(ctx context.Context) ([]AssignmentInterval, error)
	ListAssignmentsByDriver(ctx context.Context, driverID DriverID) ([]AssignmentInterval, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// =============================================================================
// ASSIGNMENT LEDGER
// =============================================================================

type AssignmentLedger struct {
	Store AssignmentStore
}

func NewAssignmentLedger(store AssignmentStore) *AssignmentLedger {
	return &AssignmentLedger{Store: store}
}

// CreateInterval validates and stores a new assignment interval.
func (al *AssignmentLedger) CreateInterval(ctx context.Context, driverID DriverID, vehicleID VehicleID, start Date, end *Date) (AssignmentInterval, error) {
	if end != nil && end.Before(start) {
		return AssignmentInterval{}, ErrInvalidInterval
	}

	existing, err := al.Store.ListAssignmentsByDriver(ctx, driverID)
	if err != nil {
		return AssignmentInterval{}, err
	}
	for _, a := range existing {
		if a.VehicleID == vehicleID && a.Start.Equal(start) {
			return AssignmentInterval{}, ErrDuplicateInterval
		}
	}

	interval := AssignmentInterval{
		ID:        uuid.NewString(),
		DriverID:  driverID,
		VehicleID: vehicleID,
		Start:     start,
		End:       end,
	}
	if err := al.Store.SaveAssignment(ctx, interval); err != nil {
		return AssignmentInterval{}, err
	}
	return interval, nil
}

// DeleteInterval removes an interval. Requests that captured a vehicle from
// it keep that vehicle; resolution is only affected going forward.
func (al *AssignmentLedger) DeleteInterval(ctx context.Context, id string) error {
	return al.Store.DeleteAssignment(ctx, id)
}

// Resolve returns the vehicle assigned to the driver on the given date, or
// NoVehicleAssignedError when no interval covers it.
func (al *AssignmentLedger) Resolve(ctx context.Context, driverID DriverID, on Date) (VehicleID, error) {
	intervals, err := al.Store.ListAssignmentsByDriver(ctx, driverID)
	if err != nil {
		return "", err
	}

	var best *AssignmentInterval
	for i := range intervals {
		a := intervals[i]
		if !a.Covers(on) {
			continue
		}
		// Strictly-later start replaces; equal starts keep the first stored.
		if best == nil || a.Start.After(best.Start) {
			best = &intervals[i]
		}
	}

	if best == nil {
		return "", &NoVehicleAssignedError{DriverID: driverID, On: on}
	}
	return best.VehicleID, nil
}
