package fleet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/armada/fleet-engine/fleet"
	"github.com/armada/fleet-engine/fleet/store"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type disbursementFixture struct {
	store    *store.Memory
	ledger   *fleet.AssignmentLedger
	timeline *fleet.PriceTimeline
	service  *fleet.DisbursementService
	now      time.Time
}

// newDisbursementFixture seeds one driver on one truck for all of June 2025
// and a 6800 price effective June 1, with the clock pinned to June 20 10:00.
func newDisbursementFixture(t *testing.T) *disbursementFixture {
	t.Helper()
	mem := store.NewMemory()
	ledger := fleet.NewAssignmentLedger(mem)
	timeline := fleet.NewPriceTimeline(mem)
	service := fleet.NewDisbursementService(mem, ledger, timeline)

	f := &disbursementFixture{
		store:    mem,
		ledger:   ledger,
		timeline: timeline,
		service:  service,
		now:      time.Date(2025, time.June, 20, 10, 0, 0, 0, time.UTC),
	}
	service.Now = func() time.Time { return f.now }

	mustInterval(t, ledger, "dedi", "truck-1", date(2025, time.June, 1), nil)
	mustCreatePoint(t, timeline, at(2025, time.June, 1, 0), "6800")
	return f
}

func (f *disbursementFixture) createPending(t *testing.T, requested fleet.Date) fleet.FuelRequest {
	t.Helper()
	req, err := f.service.Create(context.Background(), fleet.CreateFuelRequestCommand{
		DriverID:      "dedi",
		RequestedDate: requested,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return req
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestDisbursement_Create_CapturesResolvedVehicle(t *testing.T) {
	// GIVEN: Driver assigned to truck-1 on the requested date
	// WHEN: Creating a request
	// THEN: Pending, with the vehicle captured as a historical fact

	f := newDisbursementFixture(t)

	req := f.createPending(t, date(2025, time.June, 20))
	if req.Status != fleet.StatusPending {
		t.Errorf("status = %s, want pending", req.Status)
	}
	if req.VehicleID != "truck-1" {
		t.Errorf("vehicle = %s, want truck-1", req.VehicleID)
	}
	if req.Approval != nil {
		t.Error("pending request must carry no approval")
	}
}

func TestDisbursement_Create_NoAssignmentPersistsNothing(t *testing.T) {
	// GIVEN: The requested date precedes the driver's first interval
	// WHEN: Creating a request
	// THEN: NoVehicleAssignedError and an empty request list

	f := newDisbursementFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, fleet.CreateFuelRequestCommand{
		DriverID:      "dedi",
		RequestedDate: date(2025, time.May, 20),
	})
	if !errors.Is(err, fleet.ErrNoVehicleAssigned) {
		t.Fatalf("got %v, want ErrNoVehicleAssigned", err)
	}

	requests, _ := f.store.ListFuelRequests(ctx)
	if len(requests) != 0 {
		t.Errorf("persisted %d requests, want 0", len(requests))
	}
}

func TestDisbursement_Create_ValidatesCommand(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, fleet.CreateFuelRequestCommand{RequestedDate: date(2025, time.June, 20)})
	if !errors.Is(err, fleet.ErrInvalidCommand) {
		t.Errorf("missing driver: got %v, want ErrInvalidCommand", err)
	}

	_, err = f.service.Create(ctx, fleet.CreateFuelRequestCommand{DriverID: "dedi"})
	if !errors.Is(err, fleet.ErrInvalidCommand) {
		t.Errorf("missing date: got %v, want ErrInvalidCommand", err)
	}
}

// =============================================================================
// APPROVAL PRICING TESTS
// =============================================================================

func TestDisbursement_Approve_SameDay_PricesAtCurrentInstant(t *testing.T) {
	// GIVEN: A request for today with a price change earlier today
	// WHEN: Approving for 100000
	// THEN: Priced at the in-effect-now 7100: liters = 14.08

	f := newDisbursementFixture(t)
	ctx := context.Background()
	mustCreatePoint(t, f.timeline, at(2025, time.June, 20, 8), "7100")

	req := f.createPending(t, date(2025, time.June, 20))
	approved, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: req.ID,
		StationID: "pertamina",
		Amount:    fleet.MustDecimal("100000"),
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if approved.Status != fleet.StatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if !approved.Approval.Liters.Equal(fleet.MustDecimal("14.08")) {
		t.Errorf("liters = %s, want 14.08 (100000/7100)", approved.Approval.Liters)
	}
	if !approved.Approval.ApprovedAt.Equal(f.now) {
		t.Errorf("approvedAt = %v, want pinned now", approved.Approval.ApprovedAt)
	}
}

func TestDisbursement_Approve_BackDated_PricesAtRequestedDayClose(t *testing.T) {
	// GIVEN: A request for June 10 approved on June 20, with a price change
	//        on June 15 in between
	// THEN: Priced at June 10 23:59:59, so the old 6800 applies:
	//       100000/6800 = 14.71

	f := newDisbursementFixture(t)
	ctx := context.Background()
	mustCreatePoint(t, f.timeline, at(2025, time.June, 15, 0), "7100")

	req := f.createPending(t, date(2025, time.June, 10))
	approved, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: req.ID,
		StationID: "pertamina",
		Amount:    fleet.MustDecimal("100000"),
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if !approved.Approval.Liters.Equal(fleet.MustDecimal("14.71")) {
		t.Errorf("liters = %s, want 14.71 (100000/6800)", approved.Approval.Liters)
	}
}

func TestDisbursement_Approve_BackDated_SameDayPriceChangeApplies(t *testing.T) {
	// GIVEN: A price change at 14:00 on the requested (past) day
	// WHEN: Approving later
	// THEN: End-of-day lookup picks up the 14:00 change

	f := newDisbursementFixture(t)
	ctx := context.Background()
	mustCreatePoint(t, f.timeline, at(2025, time.June, 10, 14), "7100")

	req := f.createPending(t, date(2025, time.June, 10))
	approved, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: req.ID,
		StationID: "pertamina",
		Amount:    fleet.MustDecimal("71000"),
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if !approved.Approval.Liters.Equal(fleet.MustDecimal("10")) {
		t.Errorf("liters = %s, want 10 (71000/7100)", approved.Approval.Liters)
	}
}

func TestDisbursement_Approve_FullTank_StoresZeroSentinels(t *testing.T) {
	// GIVEN: A full-tank approval with no amount
	// THEN: amount=0, liters=0, marker set; a price must still resolve

	f := newDisbursementFixture(t)
	ctx := context.Background()

	req := f.createPending(t, date(2025, time.June, 20))
	approved, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID:  req.ID,
		StationID:  "pertamina",
		IsFullTank: true,
	})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if !approved.Approval.IsFullTank {
		t.Error("full-tank marker not set")
	}
	if !approved.Approval.Amount.IsZero() || !approved.Approval.Liters.IsZero() {
		t.Errorf("amount=%s liters=%s, want zero sentinels", approved.Approval.Amount, approved.Approval.Liters)
	}
}

func TestDisbursement_Approve_ValidatesCommand(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()
	req := f.createPending(t, date(2025, time.June, 20))

	// Non-positive amount without the full-tank marker
	_, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: req.ID,
		StationID: "pertamina",
		Amount:    fleet.MustDecimal("0"),
	})
	if !errors.Is(err, fleet.ErrInvalidCommand) {
		t.Errorf("zero amount: got %v, want ErrInvalidCommand", err)
	}

	// Missing station
	_, err = f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: req.ID,
		Amount:    fleet.MustDecimal("100000"),
	})
	if !errors.Is(err, fleet.ErrInvalidCommand) {
		t.Errorf("missing station: got %v, want ErrInvalidCommand", err)
	}
}

// =============================================================================
// STATE MACHINE TESTS
// =============================================================================

func TestDisbursement_TerminalStatesRejectTransitions(t *testing.T) {
	// GIVEN: One approved and one rejected request
	// WHEN: Attempting approve/reject on each
	// THEN: StateTransitionError carrying the current state

	f := newDisbursementFixture(t)
	ctx := context.Background()

	approved := f.createPending(t, date(2025, time.June, 20))
	if _, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: approved.ID, StationID: "pertamina", Amount: fleet.MustDecimal("50000"),
	}); err != nil {
		t.Fatalf("setup approve: %v", err)
	}

	rejected := f.createPending(t, date(2025, time.June, 20))
	if _, err := f.service.Reject(ctx, rejected.ID); err != nil {
		t.Fatalf("setup reject: %v", err)
	}

	cases := []struct {
		name string
		run  func() error
		from fleet.RequestStatus
	}{
		{"approve approved", func() error {
			_, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
				RequestID: approved.ID, StationID: "pertamina", Amount: fleet.MustDecimal("50000"),
			})
			return err
		}, fleet.StatusApproved},
		{"reject approved", func() error {
			_, err := f.service.Reject(ctx, approved.ID)
			return err
		}, fleet.StatusApproved},
		{"approve rejected", func() error {
			_, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
				RequestID: rejected.ID, StationID: "pertamina", Amount: fleet.MustDecimal("50000"),
			})
			return err
		}, fleet.StatusRejected},
		{"reject rejected", func() error {
			_, err := f.service.Reject(ctx, rejected.ID)
			return err
		}, fleet.StatusRejected},
	}
	for _, tc := range cases {
		err := tc.run()
		if !errors.Is(err, fleet.ErrInvalidStateTransition) {
			t.Errorf("%s: got %v, want ErrInvalidStateTransition", tc.name, err)
			continue
		}
		var ste *fleet.StateTransitionError
		if errors.As(err, &ste) && ste.From != tc.from {
			t.Errorf("%s: error From = %s, want %s", tc.name, ste.From, tc.from)
		}
	}
}

func TestDisbursement_Approve_MissingRequest(t *testing.T) {
	f := newDisbursementFixture(t)

	_, err := f.service.Approve(context.Background(), fleet.ApproveFuelRequestCommand{
		RequestID: "nope", StationID: "pertamina", Amount: fleet.MustDecimal("50000"),
	})
	if !fleet.IsNotFound(err) {
		t.Fatalf("got %v, want not-found", err)
	}
}

// =============================================================================
// CORRECTION TESTS
// =============================================================================

func TestDisbursement_Correct_ReResolvesAtOriginalApproval(t *testing.T) {
	// GIVEN: A full-tank approval priced when 6800 was in effect, then a
	//        price change to 7100 before the correction arrives
	// WHEN: Correcting the amount to 68000
	// THEN: Liters use the original instant's 6800: exactly 10

	f := newDisbursementFixture(t)
	ctx := context.Background()

	req := f.createPending(t, date(2025, time.June, 20))
	if _, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: req.ID, StationID: "pertamina", IsFullTank: true,
	}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// Price changes between approval and correction.
	f.now = f.now.Add(2 * time.Hour)
	mustCreatePoint(t, f.timeline, at(2025, time.June, 20, 11), "7100")

	corrected, err := f.service.CorrectApprovedAmount(ctx, req.ID, fleet.MustDecimal("68000"))
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	if !corrected.Approval.Amount.Equal(fleet.MustDecimal("68000")) {
		t.Errorf("amount = %s, want 68000", corrected.Approval.Amount)
	}
	if !corrected.Approval.Liters.Equal(fleet.MustDecimal("10")) {
		t.Errorf("liters = %s, want 10 at the original 6800", corrected.Approval.Liters)
	}
	if !corrected.Approval.IsFullTank {
		t.Error("correction must keep the full-tank marker")
	}
}

func TestDisbursement_Correct_OnlyFullTankApprovals(t *testing.T) {
	f := newDisbursementFixture(t)
	ctx := context.Background()

	// Pending request: not correctable
	pending := f.createPending(t, date(2025, time.June, 20))
	_, err := f.service.CorrectApprovedAmount(ctx, pending.ID, fleet.MustDecimal("1000"))
	if !errors.Is(err, fleet.ErrInvalidStateTransition) {
		t.Errorf("pending: got %v, want ErrInvalidStateTransition", err)
	}

	// Fixed-amount approval: not correctable either
	fixed := f.createPending(t, date(2025, time.June, 20))
	if _, err := f.service.Approve(ctx, fleet.ApproveFuelRequestCommand{
		RequestID: fixed.ID, StationID: "pertamina", Amount: fleet.MustDecimal("50000"),
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	_, err = f.service.CorrectApprovedAmount(ctx, fixed.ID, fleet.MustDecimal("1000"))
	if !errors.Is(err, fleet.ErrInvalidStateTransition) {
		t.Errorf("fixed amount: got %v, want ErrInvalidStateTransition", err)
	}
}

func TestDisbursement_Correct_RequiresPositiveAmount(t *testing.T) {
	f := newDisbursementFixture(t)

	_, err := f.service.CorrectApprovedAmount(context.Background(), "whatever", fleet.MustDecimal("-5"))
	if !errors.Is(err, fleet.ErrInvalidCommand) {
		t.Fatalf("got %v, want ErrInvalidCommand", err)
	}
}

// =============================================================================
// CREATE-AND-APPROVE TESTS
// =============================================================================

func TestDisbursement_CreateAndApprove_AllOrNothing(t *testing.T) {
	// GIVEN: A resolvable assignment but an empty price timeline
	// WHEN: CreateAndApprove
	// THEN: Fails on price and persists nothing

	mem := store.NewMemory()
	ledger := fleet.NewAssignmentLedger(mem)
	timeline := fleet.NewPriceTimeline(mem)
	service := fleet.NewDisbursementService(mem, ledger, timeline)
	ctx := context.Background()

	mustInterval(t, ledger, "dedi", "truck-1", date(2025, time.June, 1), nil)

	_, err := service.CreateAndApprove(ctx, fleet.CreateFuelRequestCommand{
		DriverID:      "dedi",
		RequestedDate: date(2025, time.June, 10),
	}, "pertamina", fleet.MustDecimal("50000"), false)
	if !errors.Is(err, fleet.ErrNoApplicablePrice) {
		t.Fatalf("got %v, want ErrNoApplicablePrice", err)
	}

	requests, _ := mem.ListFuelRequests(ctx)
	if len(requests) != 0 {
		t.Errorf("persisted %d requests, want 0", len(requests))
	}
}

func TestDisbursement_CreateAndApprove_LandsApproved(t *testing.T) {
	// GIVEN: A resolvable assignment and price
	// WHEN: CreateAndApprove for 68000 back-dated to June 10
	// THEN: One record, already approved, liters 10 at 6800

	f := newDisbursementFixture(t)
	ctx := context.Background()

	req, err := f.service.CreateAndApprove(ctx, fleet.CreateFuelRequestCommand{
		DriverID:      "dedi",
		RequestedDate: date(2025, time.June, 10),
	}, "pertamina", fleet.MustDecimal("68000"), false)
	if err != nil {
		t.Fatalf("CreateAndApprove: %v", err)
	}

	if req.Status != fleet.StatusApproved {
		t.Errorf("status = %s, want approved", req.Status)
	}
	if req.VehicleID != "truck-1" {
		t.Errorf("vehicle = %s, want truck-1", req.VehicleID)
	}
	if !req.Approval.Liters.Equal(fleet.MustDecimal("10")) {
		t.Errorf("liters = %s, want 10", req.Approval.Liters)
	}

	requests, _ := f.store.ListFuelRequests(ctx)
	if len(requests) != 1 {
		t.Errorf("persisted %d requests, want 1", len(requests))
	}
}
