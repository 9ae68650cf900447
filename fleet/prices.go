/*
prices.go - Fuel price timeline and effective-price resolution

PURPOSE:
  Maintains the dated fuel unit price points and answers "what price was in
  effect at instant T".

RESOLUTION RULE (latest-not-after):
  Order points descending by EffectiveAt and return the first point at or
  before T. If T precedes every known point, the earliest point's price is
  assumed to have applied retroactively. Only an empty timeline resolves to
  nothing.

TIE-BREAK:
  Points may share an EffectiveAt. Among equals the first-inserted point
  wins (stable sort over store insertion order).

SEE ALSO:
  - requests.go: Uses Resolve for approval pricing
*/
package fleet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRICE STORE - Persistence for price points
// =============================================================================

type PriceStore interface {
	SavePrice(ctx context.Context, p PricePoint) error

	// ListPrices returns all points in insertion order (ascending Seq).
	ListPrices(ctx context.Context) ([]PricePoint, error)

	GetPrice(ctx context.Context, id string) (PricePoint, error)
	UpdatePrice(ctx context.Context, p PricePoint) error
	DeletePrice(ctx context.Context, id string) error
}

// =============================================================================
// PRICE TIMELINE
// =============================================================================

// PriceTimeline resolves the effective fuel price at an instant. Pure reader
// over the store except for the explicit create/update/delete operations.
type PriceTimeline struct {
	Store PriceStore
}

func NewPriceTimeline(store PriceStore) *PriceTimeline {
	return &PriceTimeline{Store: store}
}

// CreatePoint records a new price point. UnitPrice must be positive.
func (pt *PriceTimeline) CreatePoint(ctx context.Context, effectiveAt time.Time, unitPrice decimal.Decimal) (PricePoint, error) {
	if !unitPrice.IsPositive() {
		return PricePoint{}, fmt.Errorf("%w: unit price must be positive, got %s", ErrInvalidCommand, unitPrice)
	}
	p := PricePoint{
		ID:          uuid.NewString(),
		EffectiveAt: effectiveAt,
		UnitPrice:   unitPrice,
	}
	if err := pt.Store.SavePrice(ctx, p); err != nil {
		return PricePoint{}, err
	}
	return p, nil
}

// UpdatePoint edits an existing point in place. The point keeps its
// insertion sequence, so a timestamp tie still resolves the same way.
func (pt *PriceTimeline) UpdatePoint(ctx context.Context, id string, effectiveAt time.Time, unitPrice decimal.Decimal) (PricePoint, error) {
	if !unitPrice.IsPositive() {
		return PricePoint{}, fmt.Errorf("%w: unit price must be positive, got %s", ErrInvalidCommand, unitPrice)
	}
	existing, err := pt.Store.GetPrice(ctx, id)
	if err != nil {
		return PricePoint{}, err
	}
	existing.EffectiveAt = effectiveAt
	existing.UnitPrice = unitPrice
	if err := pt.Store.UpdatePrice(ctx, existing); err != nil {
		return PricePoint{}, err
	}
	return existing, nil
}

// DeletePoint removes a point. Historical approvals keep the amounts they
// were priced with; deletion only affects future resolution.
func (pt *PriceTimeline) DeletePoint(ctx context.Context, id string) error {
	return pt.Store.DeletePrice(ctx, id)
}

// Resolve returns the unit price in effect at the given instant.
//
// Fallback: when at precedes every known point, the earliest point's price
// applies. Returns NoApplicablePriceError only for an empty timeline.
func (pt *PriceTimeline) Resolve(ctx context.Context, at time.Time) (decimal.Decimal, error) {
	points, err := pt.Store.ListPrices(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if len(points) == 0 {
		return decimal.Zero, &NoApplicablePriceError{At: at}
	}

	// Descending by EffectiveAt; stable keeps insertion order among ties,
	// so the first-inserted of equal timestamps wins.
	sorted := make([]PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveAt.After(sorted[j].EffectiveAt)
	})

	for _, p := range sorted {
		if !p.EffectiveAt.After(at) {
			return p.UnitPrice, nil
		}
	}

	// Query precedes all points: the oldest known price applies retroactively.
	return sorted[len(sorted)-1].UnitPrice, nil
}
