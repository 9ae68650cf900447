/*
scenario.go - Demo scenario seed loader

PURPOSE:
  Seeds a small but realistic dataset for local exploration: a few
  drivers and vehicles, an assignment history with a mid-month vehicle
  swap, a price timeline with two changes, approved and pending fuel
  requests (including one back-dated), cash advances, and a handful of
  trip records so the report endpoints return something interesting.

  Dev convenience only. Calling it twice doubles the data; there is no
  idempotency guard.
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/armada/fleet-engine/fleet"
)

func (h *Handler) LoadDemoScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.loadDemo(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) loadDemo(ctx context.Context) error {
	truck, err := h.Registry.CreateVehicleType(ctx, "Box truck")
	if err != nil {
		return err
	}
	tractor, err := h.Registry.CreateVehicleType(ctx, "Tractor unit")
	if err != nil {
		return err
	}

	v1, err := h.Registry.CreateVehicle(ctx, "B 9301 KT", truck.ID)
	if err != nil {
		return err
	}
	v2, err := h.Registry.CreateVehicle(ctx, "B 9517 KT", tractor.ID)
	if err != nil {
		return err
	}

	dedi, err := h.Registry.CreateDriver(ctx, "Dedi Kurniawan", "0812-5550-101", "SIM-B2-4471")
	if err != nil {
		return err
	}
	surya, err := h.Registry.CreateDriver(ctx, "Surya Atmaja", "0812-5550-102", "SIM-B2-8823")
	if err != nil {
		return err
	}

	pertamina, err := h.Registry.CreateStation(ctx, "Pertamina KM 12")
	if err != nil {
		return err
	}
	shell, err := h.Registry.CreateStation(ctx, "Shell Bypass")
	if err != nil {
		return err
	}

	road, err := h.Registry.CreateAdvanceType(ctx, "Road money")
	if err != nil {
		return err
	}
	repair, err := h.Registry.CreateAdvanceType(ctx, "Repair")
	if err != nil {
		return err
	}

	now := time.Now()
	monthStart := fleet.NewDate(now.Year(), now.Month(), 1)

	// Price timeline: one point before the month, one change mid-month.
	if _, err := h.Prices.CreatePoint(ctx, monthStart.AddDays(-20).StartOfDay(), fleet.MustDecimal("6800")); err != nil {
		return err
	}
	if _, err := h.Prices.CreatePoint(ctx, monthStart.AddDays(9).StartOfDay(), fleet.MustDecimal("7100")); err != nil {
		return err
	}

	// Dedi drives v1 all month; Surya starts on v2, swaps to v1 on day 15
	// (latest-start wins from there).
	if _, err := h.Assignments.CreateInterval(ctx, dedi.ID, v1.ID, monthStart, nil); err != nil {
		return err
	}
	if _, err := h.Assignments.CreateInterval(ctx, surya.ID, v2.ID, monthStart, nil); err != nil {
		return err
	}
	if _, err := h.Assignments.CreateInterval(ctx, surya.ID, v1.ID, monthStart.AddDays(14), nil); err != nil {
		return err
	}

	// Approved fuel at the old price, then one after the change, then a
	// back-dated approval priced at the requested day's close.
	fuel := []struct {
		driver  fleet.DriverID
		station fleet.StationID
		day     int
		amount  string
		full    bool
	}{
		{dedi.ID, pertamina.ID, 2, "500000", false},
		{surya.ID, shell.ID, 4, "0", true},
		{dedi.ID, pertamina.ID, 12, "650000", false},
	}
	for _, f := range fuel {
		_, err := h.Fuel.CreateAndApprove(ctx, fleet.CreateFuelRequestCommand{
			DriverID:      f.driver,
			RequestedDate: monthStart.AddDays(f.day),
			Note:          "seeded",
		}, f.station, fleet.MustDecimal(f.amount), f.full)
		if err != nil {
			return fmt.Errorf("seed fuel day %d: %w", f.day, err)
		}
	}

	// One request left pending for the approval queue.
	if _, err := h.Fuel.Create(ctx, fleet.CreateFuelRequestCommand{
		DriverID:      surya.ID,
		RequestedDate: fleet.DateOf(now),
		Note:          "awaiting dispatch confirmation",
	}); err != nil {
		return err
	}

	if _, err := h.Advances.CreateAndApprove(ctx, fleet.CreateAdvanceCommand{
		DriverID:      dedi.ID,
		RequestedDate: monthStart.AddDays(2),
		Amount:        fleet.MustDecimal("300000"),
		TypeID:        road.ID,
		Note:          "seeded",
	}); err != nil {
		return err
	}
	if _, err := h.Advances.Create(ctx, fleet.CreateAdvanceCommand{
		DriverID:      surya.ID,
		RequestedDate: fleet.DateOf(now),
		Amount:        fleet.MustDecimal("450000"),
		TypeID:        repair.ID,
		Note:          "brake pads",
	}); err != nil {
		return err
	}

	trips := []fleet.TripRecord{
		{
			TransportDate:     monthStart.AddDays(2),
			DriverName:        dedi.Name,
			CargoType:         "Container 20ft",
			RefNumber:         "MSKU 440731-2",
			Qty20:             fleet.MustDecimal("1"),
			PickupWarehouse:   "Tanjung Priok",
			DeliveryWarehouse: "Cikarang",
			Salary:            fleet.MustDecimal("250000"),
		},
		{
			TransportDate:     monthStart.AddDays(4),
			DriverName:        surya.Name,
			CargoType:         "Container 40ft",
			RefNumber:         "TGHU 998102-0",
			Qty40:             fleet.MustDecimal("1"),
			PickupWarehouse:   "Tanjung Priok",
			DeliveryWarehouse: "Karawang",
			Salary:            fleet.MustDecimal("300000"),
			HandlingFee:       fleet.MustDecimal("50000"),
		},
	}
	return h.Trips.SaveTrips(ctx, trips)
}
