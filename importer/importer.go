/*
Package importer parses bulk trip exports into candidate TripRecords.

FORMAT:
  Newline-delimited, each row a fixed 14-field tab-separated record:

    1  transport date        8  pickup warehouse
    2  driver name           9  delivery warehouse
    3  cargo type           10  depot
    4  ref number           11  return location
    5  qty-20               12  salary amount
    6  qty-40               13  handling fee
    7  qty-other            14  notes

SKIP RULES:
  - a row with fewer than 5 fields is skipped
  - the first row is skipped when field 1 carries a header marker

NUMERIC CLEANUP:
  Money fields strip every non-digit character before parsing; quantity
  fields additionally keep the decimal point. Anything still unparseable
  defaults to 0 rather than failing the row.

PREVIEW / MERGE:
  Parse produces candidate records for operator review. Merge persists a
  previewed batch all-or-nothing; ids are assigned at merge time.
*/
package importer

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armada/fleet-engine/fleet"
)

const fieldCount = 14

// dateLayouts covers the formats seen in operator exports.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

// Preview is the result of parsing a bulk export: the candidate records
// plus how many rows were skipped by the format rules.
type Preview struct {
	Records []fleet.TripRecord
	Skipped int
}

// Parse reads a tab-separated export and returns candidate trip records.
// No store state is touched.
func Parse(r io.Reader) (Preview, error) {
	var preview Preview

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		isFirst := first
		first = false

		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			preview.Skipped++
			continue
		}
		if isFirst && isHeader(fields[0]) {
			preview.Skipped++
			continue
		}

		preview.Records = append(preview.Records, parseRow(fields))
	}
	if err := scanner.Err(); err != nil {
		return Preview{}, err
	}
	return preview, nil
}

// Merge persists a previewed batch. All-or-nothing: the store-side batch
// write either lands every record or none.
func Merge(ctx context.Context, trips fleet.TripStore, records []fleet.TripRecord) error {
	batch := make([]fleet.TripRecord, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		batch[i] = rec
	}
	return trips.SaveTrips(ctx, batch)
}

func isHeader(field string) bool {
	lower := strings.ToLower(field)
	return strings.Contains(lower, "date") || strings.Contains(lower, "tanggal")
}

func parseRow(fields []string) fleet.TripRecord {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	date, _ := parseDate(get(0))
	return fleet.TripRecord{
		TransportDate:     date,
		DriverName:        get(1),
		CargoType:         get(2),
		RefNumber:         get(3),
		Qty20:             parseQuantity(get(4)),
		Qty40:             parseQuantity(get(5)),
		QtyOther:          parseQuantity(get(6)),
		PickupWarehouse:   get(7),
		DeliveryWarehouse: get(8),
		Depot:             get(9),
		ReturnLocation:    get(10),
		Salary:            parseMoney(get(11)),
		HandlingFee:       parseMoney(get(12)),
		Notes:             get(13),
	}
}

func parseDate(s string) (fleet.Date, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return fleet.DateOf(t), nil
		}
		lastErr = err
	}
	return fleet.Date{}, lastErr
}

// parseMoney strips every non-digit character ("Rp 1.500.000" -> 1500000).
func parseMoney(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return parseOrZero(b.String())
}

// parseQuantity keeps digits and the decimal point ("2,5 units" -> 2.5 is
// NOT recovered; "2.5" is). Thousands separators in quantities do not occur
// in practice.
func parseQuantity(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return parseOrZero(b.String())
}

func parseOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
