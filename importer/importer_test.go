package importer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/armada/fleet-engine/fleet"
	"github.com/armada/fleet-engine/fleet/store"
	"github.com/armada/fleet-engine/importer"
)

// row builds a full 14-field tab-separated line.
func row(fields ...string) string {
	padded := make([]string, 14)
	copy(padded, fields)
	return strings.Join(padded, "\t")
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse_FullRow(t *testing.T) {
	// GIVEN: One complete export row
	// THEN: Every field lands in its place

	input := row(
		"2025-06-02", "Dedi Kurniawan", "Container 20ft", "MSKU 440731-2",
		"1", "0", "0",
		"Tanjung Priok", "Cikarang", "Depot A", "Tanjung Priok",
		"Rp 250.000", "Rp 50.000", "night run",
	)

	preview, err := importer.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if preview.Skipped != 0 || len(preview.Records) != 1 {
		t.Fatalf("skipped=%d records=%d, want 0/1", preview.Skipped, len(preview.Records))
	}

	rec := preview.Records[0]
	if rec.TransportDate != fleet.NewDate(2025, time.June, 2) {
		t.Errorf("date = %v", rec.TransportDate)
	}
	if rec.DriverName != "Dedi Kurniawan" || rec.CargoType != "Container 20ft" {
		t.Errorf("driver/cargo = %q/%q", rec.DriverName, rec.CargoType)
	}
	if !rec.Qty20.Equal(fleet.MustDecimal("1")) {
		t.Errorf("qty20 = %s, want 1", rec.Qty20)
	}
	if !rec.Salary.Equal(fleet.MustDecimal("250000")) {
		t.Errorf("salary = %s, want 250000 with separators stripped", rec.Salary)
	}
	if !rec.HandlingFee.Equal(fleet.MustDecimal("50000")) {
		t.Errorf("handling fee = %s, want 50000", rec.HandlingFee)
	}
	if rec.Notes != "night run" {
		t.Errorf("notes = %q", rec.Notes)
	}
	if rec.ID != "" {
		t.Error("preview must not assign ids")
	}
}

func TestParse_HeaderRowSkipped(t *testing.T) {
	// GIVEN: A first row carrying a header marker in field 1
	// THEN: It is skipped and counted; the marker only applies to the first row

	input := row("Transport Date", "Driver", "Cargo", "Ref") + "\n" +
		row("2025-06-02", "Dedi", "Container 20ft", "X", "1")

	preview, err := importer.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if preview.Skipped != 1 || len(preview.Records) != 1 {
		t.Errorf("skipped=%d records=%d, want 1/1", preview.Skipped, len(preview.Records))
	}
}

func TestParse_ShortRowsSkipped(t *testing.T) {
	// Rows with fewer than 5 fields are skipped; 5 fields is enough.
	input := strings.Join([]string{
		"a\tb\tc\td",
		"2025-06-02\tDedi\tCargo\tRef\t1",
		"lone field",
	}, "\n")

	preview, err := importer.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if preview.Skipped != 2 || len(preview.Records) != 1 {
		t.Errorf("skipped=%d records=%d, want 2/1", preview.Skipped, len(preview.Records))
	}
}

func TestParse_NumericCleanup(t *testing.T) {
	// Quantities keep the decimal point; money keeps digits only; garbage
	// defaults to zero instead of failing the row.
	input := row(
		"2025-06-02", "Dedi", "Cargo", "Ref",
		"2.5", "n/a", "-",
		"", "", "", "",
		"1.500.000", "abc",
	)

	preview, err := importer.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec := preview.Records[0]

	if !rec.Qty20.Equal(fleet.MustDecimal("2.5")) {
		t.Errorf("qty20 = %s, want 2.5", rec.Qty20)
	}
	if !rec.Qty40.IsZero() || !rec.QtyOther.IsZero() {
		t.Errorf("qty40/qtyOther = %s/%s, want zeros", rec.Qty40, rec.QtyOther)
	}
	if !rec.Salary.Equal(fleet.MustDecimal("1500000")) {
		t.Errorf("salary = %s, want 1500000", rec.Salary)
	}
	if !rec.HandlingFee.IsZero() {
		t.Errorf("handling fee = %s, want 0", rec.HandlingFee)
	}
}

func TestParse_AlternateDateFormats(t *testing.T) {
	input := row("15/06/2025", "Dedi", "Cargo", "Ref", "1")

	preview, err := importer.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := preview.Records[0].TransportDate; got != fleet.NewDate(2025, time.June, 15) {
		t.Errorf("date = %v, want 2025-06-15", got)
	}
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	input := "\n" + row("2025-06-02", "Dedi", "Cargo", "Ref", "1") + "\n\n"

	preview, err := importer.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if preview.Skipped != 0 || len(preview.Records) != 1 {
		t.Errorf("skipped=%d records=%d, want 0/1", preview.Skipped, len(preview.Records))
	}
}

// =============================================================================
// MERGE TESTS
// =============================================================================

func TestMerge_AssignsIDsAndPersists(t *testing.T) {
	// GIVEN: A previewed batch without ids
	// WHEN: Merging
	// THEN: Every stored record carries a fresh id

	mem := store.NewMemory()
	ctx := context.Background()

	records := []fleet.TripRecord{
		{TransportDate: fleet.NewDate(2025, time.June, 2), DriverName: "Dedi"},
		{TransportDate: fleet.NewDate(2025, time.June, 3), DriverName: "Surya"},
	}
	if err := importer.Merge(ctx, mem, records); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	stored, err := mem.ListTrips(ctx)
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d trips, want 2", len(stored))
	}
	seen := map[string]bool{}
	for _, trip := range stored {
		if trip.ID == "" {
			t.Error("merged trip without id")
		}
		if seen[trip.ID] {
			t.Errorf("duplicate id %s", trip.ID)
		}
		seen[trip.ID] = true
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	mem := store.NewMemory()

	records := []fleet.TripRecord{{TransportDate: fleet.NewDate(2025, time.June, 2)}}
	if err := importer.Merge(context.Background(), mem, records); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if records[0].ID != "" {
		t.Error("Merge mutated the caller's slice")
	}
}
