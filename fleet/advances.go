/*
advances.go - Cash advance request lifecycle

Mirrors the fuel lifecycle minus price conversion: the amount is fixed by
the requester and never recomputed, so no correction operation exists.
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
// ADVANCE STORE
// =============================================================================

type AdvanceStore interface {
	SaveAdvance(ctx context.Context, a AdvanceRequest) error
	GetAdvance(ctx context.Context, id string) (AdvanceRequest, error)
	UpdateAdvance(ctx context.Context, a AdvanceRequest) error
	DeleteAdvance(ctx context.Context, id string) error
	ListAdvances(ctx context.Context) ([]AdvanceRequest, error)
}

// =============================================================================
// COMMAND
// =============================================================================

type CreateAdvanceCommand struct {
	DriverID      DriverID
	RequestedDate Date
	Amount        decimal.Decimal
	TypeID        AdvanceTypeID
	Note          string
}

func (c CreateAdvanceCommand) Validate() error {
	if c.DriverID == "" {
		return fmt.Errorf("%w: driver id required", ErrInvalidCommand)
	}
	if c.RequestedDate.IsZero() {
		return fmt.Errorf("%w: requested date required", ErrInvalidCommand)
	}
	if !c.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidCommand)
	}
	if c.TypeID == "" {
		return fmt.Errorf("%w: advance type required", ErrInvalidCommand)
	}
	return nil
}

// =============================================================================
// ADVANCE SERVICE
// =============================================================================

type AdvanceService struct {
	Store AdvanceStore

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewAdvanceService(store AdvanceStore) *AdvanceService {
	return &AdvanceService{Store: store, Now: time.Now}
}

// Create persists a pending advance with the requester-supplied amount.
func (as *AdvanceService) Create(ctx context.Context, cmd CreateAdvanceCommand) (AdvanceRequest, error) {
	if err := cmd.Validate(); err != nil {
		return AdvanceRequest{}, err
	}

	advance := AdvanceRequest{
		ID:            uuid.NewString(),
		DriverID:      cmd.DriverID,
		RequestedDate: cmd.RequestedDate,
		Amount:        cmd.Amount,
		TypeID:        cmd.TypeID,
		Status:        StatusPending,
		Note:          cmd.Note,
		CreatedAt:     as.Now(),
	}
	if err := as.Store.SaveAdvance(ctx, advance); err != nil {
		return AdvanceRequest{}, err
	}
	return advance, nil
}

// Approve stamps approvedAt=now; the amount is unchanged.
func (as *AdvanceService) Approve(ctx context.Context, advanceID string) (AdvanceRequest, error) {
	advance, err := as.Store.GetAdvance(ctx, advanceID)
	if err != nil {
		return AdvanceRequest{}, err
	}
	if advance.Status != StatusPending {
		return AdvanceRequest{}, &StateTransitionError{RequestID: advance.ID, From: advance.Status, Attempted: "approve"}
	}

	now := as.Now()
	advance.Status = StatusApproved
	advance.ApprovedAt = &now
	if err := as.Store.UpdateAdvance(ctx, advance); err != nil {
		return AdvanceRequest{}, err
	}
	return advance, nil
}

// Reject transitions a pending advance to Rejected. Terminal.
func (as *AdvanceService) Reject(ctx context.Context, advanceID string) (AdvanceRequest, error) {
	advance, err := as.Store.GetAdvance(ctx, advanceID)
	if err != nil {
		return AdvanceRequest{}, err
	}
	if advance.Status != StatusPending {
		return AdvanceRequest{}, &StateTransitionError{RequestID: advance.ID, From: advance.Status, Attempted: "reject"}
	}

	advance.Status = StatusRejected
	if err := as.Store.UpdateAdvance(ctx, advance); err != nil {
		return AdvanceRequest{}, err
	}
	return advance, nil
}

// Delete removes an advance unconditionally.
func (as *AdvanceService) Delete(ctx context.Context, advanceID string) error {
	return as.Store.DeleteAdvance(ctx, advanceID)
}

// CreateAndApprove composes create+approve for administrative entry. The
// command is validated before anything is persisted; the record is saved
// already approved, so a failure leaves no trace.
func (as *AdvanceService) CreateAndApprove(ctx context.Context, cmd CreateAdvanceCommand) (AdvanceRequest, error) {
	if err := cmd.Validate(); err != nil {
		return AdvanceRequest{}, err
	}

	now := as.Now()
	advance := AdvanceRequest{
		ID:            uuid.NewString(),
		DriverID:      cmd.DriverID,
		RequestedDate: cmd.RequestedDate,
		Amount:        cmd.Amount,
		TypeID:        cmd.TypeID,
		Status:        StatusApproved,
		Note:          cmd.Note,
		ApprovedAt:    &now,
		CreatedAt:     now,
	}
	if err := as.Store.SaveAdvance(ctx, advance); err != nil {
		return AdvanceRequest{}, err
	}
	return advance, nil
}
