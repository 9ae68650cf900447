/*
reports.go - Read-side rollups over the disbursement ledgers

PURPOSE:
  Pure functions of a closed date range over the fuel, advance and trip
  collections. Nothing here is stored; every report is recomputed from
  current state on each query.

ROLLUPS:
  - Total fuel cost:    sum of approval.amount for approved fuel requests
                        with requestedDate in range
  - Total advance cost: sum of amount for approved advances in range
  - Per-driver:         the same sums grouped by driver, sorted descending
                        by combined total
  - Cargo mix:          trip counts grouped by cargo type, normalized to a
                        percentage of total trips in range
*/
package fleet

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRIP STORE - Imported haulage trips
// =============================================================================

type TripStore interface {
	// SaveTrips persists a previewed batch all-or-nothing.
	SaveTrips(ctx context.Context, trips []TripRecord) error
	ListTrips(ctx context.Context) ([]TripRecord, error)
}

// =============================================================================
// REPORT TYPES
// =============================================================================

type DriverTotal struct {
	DriverID DriverID
	Fuel     decimal.Decimal
	Advance  decimal.Decimal
	Combined decimal.Decimal
}

type CargoShare struct {
	CargoType string
	Trips     int
	Percent   decimal.Decimal
}

type RangeReport struct {
	From Date
	To   Date

	TotalFuel    decimal.Decimal
	TotalAdvance decimal.Decimal
	Drivers      []DriverTotal
	CargoMix     []CargoShare
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter aggregates over the three collections. Read-only: it never
// mutates any store.
type Reporter struct {
	Fuel     FuelRequestStore
	Advances AdvanceStore
	Trips    TripStore
}

func NewReporter(fuel FuelRequestStore, advances AdvanceStore, trips TripStore) *Reporter {
	return &Reporter{Fuel: fuel, Advances: advances, Trips: trips}
}

// Aggregate computes the rollups for the closed range [from, to].
func (r *Reporter) Aggregate(ctx context.Context, from, to Date) (RangeReport, error) {
	report := RangeReport{
		From:         from,
		To:           to,
		TotalFuel:    decimal.Zero,
		TotalAdvance: decimal.Zero,
	}

	inRange := func(d Date) bool {
		return from.BeforeOrEqual(d) && d.BeforeOrEqual(to)
	}

	byDriver := make(map[DriverID]*DriverTotal)
	driverTotal := func(id DriverID) *DriverTotal {
		dt, ok := byDriver[id]
		if !ok {
			dt = &DriverTotal{DriverID: id, Fuel: decimal.Zero, Advance: decimal.Zero, Combined: decimal.Zero}
			byDriver[id] = dt
		}
		return dt
	}

	requests, err := r.Fuel.ListFuelRequests(ctx)
	if err != nil {
		return RangeReport{}, err
	}
	for _, req := range requests {
		if req.Status != StatusApproved || req.Approval == nil || !inRange(req.RequestedDate) {
			continue
		}
		report.TotalFuel = report.TotalFuel.Add(req.Approval.Amount)
		dt := driverTotal(req.DriverID)
		dt.Fuel = dt.Fuel.Add(req.Approval.Amount)
	}

	advances, err := r.Advances.ListAdvances(ctx)
	if err != nil {
		return RangeReport{}, err
	}
	for _, adv := range advances {
		if adv.Status != StatusApproved || !inRange(adv.RequestedDate) {
			continue
		}
		report.TotalAdvance = report.TotalAdvance.Add(adv.Amount)
		dt := driverTotal(adv.DriverID)
		dt.Advance = dt.Advance.Add(adv.Amount)
	}

	for _, dt := range byDriver {
		dt.Combined = dt.Fuel.Add(dt.Advance)
		report.Drivers = append(report.Drivers, *dt)
	}
	// Descending by combined total; driver id breaks ties for stable output.
	sort.Slice(report.Drivers, func(i, j int) bool {
		a, b := report.Drivers[i], report.Drivers[j]
		if !a.Combined.Equal(b.Combined) {
			return a.Combined.GreaterThan(b.Combined)
		}
		return a.DriverID < b.DriverID
	})

	cargoMix, err := r.cargoMix(ctx, inRange)
	if err != nil {
		return RangeReport{}, err
	}
	report.CargoMix = cargoMix

	return report, nil
}

func (r *Reporter) cargoMix(ctx context.Context, inRange func(Date) bool) ([]CargoShare, error) {
	trips, err := r.Trips.ListTrips(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	total := 0
	for _, trip := range trips {
		if !inRange(trip.TransportDate) {
			continue
		}
		counts[trip.CargoType]++
		total++
	}
	if total == 0 {
		return nil, nil
	}

	hundred := decimal.NewFromInt(100)
	totalDec := decimal.NewFromInt(int64(total))
	shares := make([]CargoShare, 0, len(counts))
	for cargo, n := range counts {
		shares = append(shares, CargoShare{
			CargoType: cargo,
			Trips:     n,
			Percent:   decimal.NewFromInt(int64(n)).Mul(hundred).Div(totalDec).Round(2),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Trips != shares[j].Trips {
			return shares[i].Trips > shares[j].Trips
		}
		return shares[i].CargoType < shares[j].CargoType
	})
	return shares, nil
}
