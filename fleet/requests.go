/*
requests.go - Fuel disbursement request lifecycle

PURPOSE:
  The state machine that turns a pending fuel request into an approved
  amount/liter pair, plus the full-tank variant and post-approval
  correction.

REQUEST FLOW:

  create ──▶ Pending ──▶ Approved ──▶ Approved (full-tank correction only)
                 │
                 └─────▶ Rejected

  Rejected and Approved are terminal for the create→decide transition;
  there is no un-reject or un-approve.

PRICING:
  Approval requires a resolvable price. A same-day approval prices against
  the current instant; a back-dated one prices against 23:59:59 of the
  requested date. A full-tank approval stores zero sentinels for amount and
  liters; the amount is fixed later by a correction that re-resolves the
  price at the original approval instant.

ATOMICITY:
  CreateAndApprove composes create+approve all-or-nothing: if vehicle
  resolution or price resolution fails, no record is persisted.

SEE ALSO:
  - assignments.go: Vehicle resolution at creation
  - prices.go: Effective-price resolution at approval
*/
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FUEL REQUEST STORE
// =============================================================================

type FuelRequestStore interface {
	SaveFuelRequest(ctx context.Context, r FuelRequest) error
	GetFuelRequest(ctx context.Context, id string) (FuelRequest, error)
	UpdateFuelRequest(ctx context.Context, r FuelRequest) error
	DeleteFuelRequest(ctx context.Context, id string) error
	ListFuelRequests(ctx context.Context) ([]FuelRequest, error)
}

// =============================================================================
// COMMANDS - Validated operation inputs
// =============================================================================

type CreateFuelRequestCommand struct {
	DriverID      DriverID
	RequestedDate Date
	Note          string
}

func (c CreateFuelRequestCommand) Validate() error {
	if c.DriverID == "" {
		return fmt.Errorf("%w: driver id required", ErrInvalidCommand)
	}
	if c.RequestedDate.IsZero() {
		return fmt.Errorf("%w: requested date required", ErrInvalidCommand)
	}
	return nil
}

type ApproveFuelRequestCommand struct {
	RequestID  string
	StationID  StationID
	Amount     decimal.Decimal
	IsFullTank bool
}

func (c ApproveFuelRequestCommand) Validate() error {
	if c.RequestID == "" {
		return fmt.Errorf("%w: request id required", ErrInvalidCommand)
	}
	if c.StationID == "" {
		return fmt.Errorf("%w: station id required", ErrInvalidCommand)
	}
	if !c.IsFullTank && !c.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive unless full tank", ErrInvalidCommand)
	}
	return nil
}

// =============================================================================
// DISBURSEMENT SERVICE
// =============================================================================

// DisbursementService orchestrates the fuel request lifecycle. Reads of the
// assignment ledger and price timeline are snapshots taken at the moment of
// the operation; the service never mutates their state.
type DisbursementService struct {
	Requests    FuelRequestStore
	Assignments *AssignmentLedger
	Prices      *PriceTimeline

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewDisbursementService(requests FuelRequestStore, assignments *AssignmentLedger, prices *PriceTimeline) *DisbursementService {
	return &DisbursementService{
		Requests:    requests,
		Assignments: assignments,
		Prices:      prices,
		Now:         time.Now,
	}
}

// Create resolves the driver's vehicle on the requested date and persists a
// pending request. The resolved vehicle is captured as a historical fact.
func (ds *DisbursementService) Create(ctx context.Context, cmd CreateFuelRequestCommand) (FuelRequest, error) {
	if err := cmd.Validate(); err != nil {
		return FuelRequest{}, err
	}

	vehicleID, err := ds.Assignments.Resolve(ctx, cmd.DriverID, cmd.RequestedDate)
	if err != nil {
		return FuelRequest{}, err
	}

	request := FuelRequest{
		ID:            uuid.NewString(),
		DriverID:      cmd.DriverID,
		VehicleID:     vehicleID,
		RequestedDate: cmd.RequestedDate,
		Status:        StatusPending,
		Note:          cmd.Note,
		CreatedAt:     ds.Now(),
	}
	if err := ds.Requests.SaveFuelRequest(ctx, request); err != nil {
		return FuelRequest{}, err
	}
	return request, nil
}

// Approve prices a pending request and transitions it to Approved.
//
// A full-tank approval stores amount=0, liters=0 as "quantity not fixed in
// advance"; otherwise liters = amount / unitPrice rounded to 2 decimals.
func (ds *DisbursementService) Approve(ctx context.Context, cmd ApproveFuelRequestCommand) (FuelRequest, error) {
	if err := cmd.Validate(); err != nil {
		return FuelRequest{}, err
	}

	request, err := ds.Requests.GetFuelRequest(ctx, cmd.RequestID)
	if err != nil {
		return FuelRequest{}, err
	}
	if request.Status != StatusPending {
		return FuelRequest{}, &StateTransitionError{RequestID: request.ID, From: request.Status, Attempted: "approve"}
	}

	now := ds.Now()
	unitPrice, err := ds.Prices.Resolve(ctx, ds.priceLookupAt(request.RequestedDate, now))
	if err != nil {
		return FuelRequest{}, err
	}

	approval := &Approval{
		StationID:  cmd.StationID,
		ApprovedAt: now,
		IsFullTank: cmd.IsFullTank,
	}
	if cmd.IsFullTank {
		approval.Amount = decimal.Zero
		approval.Liters = decimal.Zero
	} else {
		approval.Amount = cmd.Amount
		approval.Liters = cmd.Amount.Div(unitPrice).Round(2)
	}

	request.Status = StatusApproved
	request.Approval = approval
	if err := ds.Requests.UpdateFuelRequest(ctx, request); err != nil {
		return FuelRequest{}, err
	}
	return request, nil
}

// Reject transitions a pending request to Rejected. Terminal.
func (ds *DisbursementService) Reject(ctx context.Context, requestID string) (FuelRequest, error) {
	request, err := ds.Requests.GetFuelRequest(ctx, requestID)
	if err != nil {
		return FuelRequest{}, err
	}
	if request.Status != StatusPending {
		return FuelRequest{}, &StateTransitionError{RequestID: request.ID, From: request.Status, Attempted: "reject"}
	}

	request.Status = StatusRejected
	if err := ds.Requests.UpdateFuelRequest(ctx, request); err != nil {
		return FuelRequest{}, err
	}
	return request, nil
}

// CorrectApprovedAmount fixes the amount of a full-tank approval after the
// fact. The price is re-resolved at the original approval instant so the
// correction stays consistent with historical pricing; approvedAt, station
// and the full-tank marker are untouched.
func (ds *DisbursementService) CorrectApprovedAmount(ctx context.Context, requestID string, newAmount decimal.Decimal) (FuelRequest, error) {
	if !newAmount.IsPositive() {
		return FuelRequest{}, fmt.Errorf("%w: corrected amount must be positive", ErrInvalidCommand)
	}

	request, err := ds.Requests.GetFuelRequest(ctx, requestID)
	if err != nil {
		return FuelRequest{}, err
	}
	if request.Status != StatusApproved || request.Approval == nil || !request.Approval.IsFullTank {
		return FuelRequest{}, &StateTransitionError{RequestID: requestID, From: request.Status, Attempted: "correct"}
	}

	lookupAt := request.Approval.ApprovedAt
	if lookupAt.IsZero() {
		lookupAt = request.RequestedDate.EndOfDay()
	}
	unitPrice, err := ds.Prices.Resolve(ctx, lookupAt)
	if err != nil {
		return FuelRequest{}, err
	}

	request.Approval.Amount = newAmount
	request.Approval.Liters = newAmount.Div(unitPrice).Round(2)
	if err := ds.Requests.UpdateFuelRequest(ctx, request); err != nil {
		return FuelRequest{}, err
	}
	return request, nil
}

// Delete removes a request unconditionally. Operator confirmation is a UI
// concern, not a core contract.
func (ds *DisbursementService) Delete(ctx context.Context, requestID string) error {
	return ds.Requests.DeleteFuelRequest(ctx, requestID)
}

// CreateAndApprove is the administrative fast-path: create then approve,
// all-or-nothing. Both resolutions run before anything is persisted.
func (ds *DisbursementService) CreateAndApprove(ctx context.Context, create CreateFuelRequestCommand, stationID StationID, amount decimal.Decimal, isFullTank bool) (FuelRequest, error) {
	if err := create.Validate(); err != nil {
		return FuelRequest{}, err
	}
	approveCmd := ApproveFuelRequestCommand{RequestID: "pending-validation", StationID: stationID, Amount: amount, IsFullTank: isFullTank}
	if err := approveCmd.Validate(); err != nil {
		return FuelRequest{}, err
	}

	vehicleID, err := ds.Assignments.Resolve(ctx, create.DriverID, create.RequestedDate)
	if err != nil {
		return FuelRequest{}, err
	}

	now := ds.Now()
	unitPrice, err := ds.Prices.Resolve(ctx, ds.priceLookupAt(create.RequestedDate, now))
	if err != nil {
		return FuelRequest{}, err
	}

	approval := &Approval{
		StationID:  stationID,
		ApprovedAt: now,
		IsFullTank: isFullTank,
	}
	if isFullTank {
		approval.Amount = decimal.Zero
		approval.Liters = decimal.Zero
	} else {
		approval.Amount = amount
		approval.Liters = amount.Div(unitPrice).Round(2)
	}

	request := FuelRequest{
		ID:            uuid.NewString(),
		DriverID:      create.DriverID,
		VehicleID:     vehicleID,
		RequestedDate: create.RequestedDate,
		Status:        StatusApproved,
		Note:          create.Note,
		Approval:      approval,
		CreatedAt:     now,
	}
	if err := ds.Requests.SaveFuelRequest(ctx, request); err != nil {
		return FuelRequest{}, err
	}
	return request, nil
}

// priceLookupAt picks the pricing instant: the current instant for a
// same-day request, end-of-day of the requested date when back-dating.
func (ds *DisbursementService) priceLookupAt(requested Date, now time.Time) time.Time {
	if requested.Equal(DateOf(now)) {
		return now
	}
	return requested.EndOfDay()
}
