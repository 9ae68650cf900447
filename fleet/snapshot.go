/*
snapshot.go - Read-only export for the external summarizer

The natural-language summary feature is an external collaborator: the core
hands it a snapshot of requests and prices and receives back opaque display
text. The snapshot is a deep copy; nothing the summarizer does can reach
stored state.
*/
package fleet

import (
	"context"
)

// Snapshot is the read-only export consumed by the summarizer.
type Snapshot struct {
	Requests []FuelRequest `json:"requests"`
	Prices   []PricePoint  `json:"prices"`
}

// BuildSnapshot copies the current fuel requests and price points.
func BuildSnapshot(ctx context.Context, requests FuelRequestStore, prices PriceStore) (Snapshot, error) {
	reqs, err := requests.ListFuelRequests(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	points, err := prices.ListPrices(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Requests: make([]FuelRequest, len(reqs)),
		Prices:   make([]PricePoint, len(points)),
	}
	for i, r := range reqs {
		if r.Approval != nil {
			a := *r.Approval
			r.Approval = &a
		}
		snap.Requests[i] = r
	}
	copy(snap.Prices, points)
	return snap, nil
}
