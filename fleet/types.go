/*
Package fleet provides the core disbursement engine for a small trucking
operation.

PURPOSE:
  This package contains the domain types and algorithms for tracking fuel
  and cash-advance disbursement: which vehicle a driver operates on a given
  date, which fuel price is in effect at a given instant, and the lifecycle
  that turns a pending disbursement request into an approved amount/liter
  pair.

KEY CONCEPTS IN THIS FILE (types.go):
  - Reference entities: Driver, Vehicle, VehicleType, Station, AdvanceType
  - PricePoint: A dated fuel unit price
  - AssignmentInterval: A driver-to-vehicle binding over a date range
  - FuelRequest / AdvanceRequest: Disbursement records with status
  - TripRecord: An imported haulage trip (feeds the cargo-mix report)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for money and liters, never floats
  2. Type Safety: Strong typing for IDs prevents mixing driver/vehicle IDs
  3. Historical facts: A request captures the vehicle resolved at creation
     and never re-resolves it, even if assignments later change

SEE ALSO:
  - prices.go: Effective-price resolution
  - assignments.go: Vehicle assignment resolution
  - requests.go: Fuel request lifecycle
  - advances.go: Cash advance lifecycle
  - reports.go: Read-side rollups
*/
package fleet

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type DriverID string
type VehicleID string
type VehicleTypeID string
type StationID string
type AdvanceTypeID string

// =============================================================================
// REFERENCE ENTITIES
// =============================================================================
// Lookup records maintained by administrative edit. Deleting one never
// cascades into historical requests; dangling references render as "unknown".

type Driver struct {
	ID        DriverID
	Name      string
	Phone     string
	LicenseNo string
}

type Vehicle struct {
	ID          VehicleID
	PlateNumber string
	TypeID      VehicleTypeID
}

type VehicleType struct {
	ID   VehicleTypeID
	Name string
}

type Station struct {
	ID   StationID
	Name string
}

type AdvanceType struct {
	ID   AdvanceTypeID
	Name string
}

// =============================================================================
// PRICE POINT - A fuel unit price effective from a timestamp
// =============================================================================

// PricePoint records that the fuel unit price changed to UnitPrice at
// EffectiveAt. Multiple points may share the same EffectiveAt; resolution
// tie-breaks by insertion order (Seq).
type PricePoint struct {
	ID          string
	EffectiveAt time.Time
	UnitPrice   decimal.Decimal

	// Seq is the insertion sequence assigned by the store. It only matters
	// when two points share the same EffectiveAt.
	Seq int64
}

// =============================================================================
// ASSIGNMENT INTERVAL - Driver operates vehicle over a date range
// =============================================================================

// AssignmentInterval binds a driver to a vehicle from Start through End
// inclusive, or indefinitely when End is nil. Intervals for the same driver
// may overlap in the stored data; resolution picks the latest Start.
type AssignmentInterval struct {
	ID        string
	DriverID  DriverID
	VehicleID VehicleID
	Start     Date
	End       *Date
}

// Covers returns true if the interval is in force on the given date.
func (ai AssignmentInterval) Covers(on Date) bool {
	if on.Before(ai.Start) {
		return false
	}
	if ai.End != nil && on.After(*ai.End) {
		return false
	}
	return true
}

// =============================================================================
// FUEL REQUEST - Disbursement record with lifecycle status
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Approval is the priced outcome of an approved fuel request.
// For a full-tank approval, Amount and Liters hold zero sentinels until the
// actual amount is fixed by a later correction.
type Approval struct {
	Amount     decimal.Decimal
	Liters     decimal.Decimal
	StationID  StationID
	ApprovedAt time.Time
	IsFullTank bool
}

// FuelRequest is a fuel disbursement request. VehicleID is resolved from the
// assignment ledger when the request is created and is a historical fact:
// later assignment changes never rewrite it.
type FuelRequest struct {
	ID            string
	DriverID      DriverID
	VehicleID     VehicleID
	RequestedDate Date
	Status        RequestStatus
	Note          string
	Approval      *Approval
	CreatedAt     time.Time
}

// =============================================================================
// ADVANCE REQUEST - Cash advance, amount fixed by the requester
// =============================================================================

type AdvanceRequest struct {
	ID            string
	DriverID      DriverID
	RequestedDate Date
	Amount        decimal.Decimal
	TypeID        AdvanceTypeID
	Status        RequestStatus
	Note          string
	ApprovedAt    *time.Time
	CreatedAt     time.Time
}

// =============================================================================
// TRIP RECORD - Imported haulage trip (salary-style row)
// =============================================================================

// TripRecord is one row of the bulk trip import. Quantities are container
// counts by size class; Salary and HandlingFee are payroll figures carried
// for the per-period reports.
type TripRecord struct {
	ID                string
	TransportDate     Date
	DriverName        string
	CargoType         string
	RefNumber         string
	Qty20             decimal.Decimal
	Qty40             decimal.Decimal
	QtyOther          decimal.Decimal
	PickupWarehouse   string
	DeliveryWarehouse string
	Depot             string
	ReturnLocation    string
	Salary            decimal.Decimal
	HandlingFee       decimal.Decimal
	Notes             string
}

// MustDecimal parses s as a decimal, returning zero on failure.
// For literals in tests and seed data.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
