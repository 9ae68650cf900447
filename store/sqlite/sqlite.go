/*
Package sqlite provides a SQLite-backed implementation of the fleet store
interfaces.

PURPOSE:
  Implements PriceStore, AssignmentStore, FuelRequestStore, AdvanceStore,
  TripStore and RegistryStore on a single SQLite file. The in-memory store
  (fleet/store) implements the same interfaces for tests and dev runs.

KEY TABLES:
  price_points:  Dated fuel unit prices (seq preserves insertion order)
  assignments:   Driver-to-vehicle intervals
  fuel_requests: Disbursement records with embedded approval columns
  advances:      Cash advance records
  trips:         Imported haulage trips
  drivers, vehicles, vehicle_types, stations, advance_types: reference data

CONCURRENCY:
  One mutex serializes writers; every mutating operation runs in a single
  SQL transaction. Trip batches insert inside one transaction, so a merge
  lands whole or not at all.

WAL MODE:
  The database is opened with WAL so readers don't block the single writer.

DECIMALS AND TIMES:
  Money and liters are stored as decimal strings, instants as RFC3339 text,
  dates as YYYY-MM-DD text. No float columns.

USAGE:
  store, err := sqlite.New("./data/fleet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/armada/fleet-engine/fleet"
)

// Store implements all fleet storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: the engine is single-writer, and a :memory: database
	// exists per connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_points (
		id TEXT PRIMARY KEY,
		effective_at TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		seq INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_points_effective_at
		ON price_points(effective_at);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_driver
		ON assignments(driver_id, start_date);

	CREATE TABLE IF NOT EXISTS fuel_requests (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		requested_date TEXT NOT NULL,
		status TEXT NOT NULL,
		note TEXT,
		approval_amount TEXT,
		approval_liters TEXT,
		approval_station_id TEXT,
		approved_at TEXT,
		is_full_tank INTEGER,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fuel_requests_driver_date
		ON fuel_requests(driver_id, requested_date);
	CREATE INDEX IF NOT EXISTS idx_fuel_requests_status
		ON fuel_requests(status);

	CREATE TABLE IF NOT EXISTS advances (
		id TEXT PRIMARY KEY,
		driver_id TEXT NOT NULL,
		requested_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		type_id TEXT NOT NULL,
		status TEXT NOT NULL,
		note TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_advances_driver_date
		ON advances(driver_id, requested_date);

	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		transport_date TEXT NOT NULL,
		driver_name TEXT,
		cargo_type TEXT,
		ref_number TEXT,
		qty_20 TEXT NOT NULL,
		qty_40 TEXT NOT NULL,
		qty_other TEXT NOT NULL,
		pickup_warehouse TEXT,
		delivery_warehouse TEXT,
		depot TEXT,
		return_location TEXT,
		salary TEXT NOT NULL,
		handling_fee TEXT NOT NULL,
		notes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_trips_date
		ON trips(transport_date);

	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		license_no TEXT
	);
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		plate_number TEXT NOT NULL,
		type_id TEXT
	);
	CREATE TABLE IF NOT EXISTS vehicle_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS stations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS advance_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// withTx runs fn inside one SQL transaction under the writer mutex.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

const instantLayout = time.RFC3339Nano

func formatDate(d fleet.Date) string { return d.String() }

func parseDate(s string) (fleet.Date, error) { return fleet.ParseDate(s) }

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// PRICE STORE
// =============================================================================

func (s *Store) SavePrice(ctx context.Context, p fleet.PricePoint) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var next sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM price_points`).Scan(&next); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO price_points (id, effective_at, unit_price, seq) VALUES (?, ?, ?, ?)`,
			p.ID, p.EffectiveAt.Format(instantLayout), p.UnitPrice.String(), next.Int64+1)
		return err
	})
}

func (s *Store) ListPrices(ctx context.Context) ([]fleet.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, effective_at, unit_price, seq FROM price_points ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.PricePoint
	for rows.Next() {
		var p fleet.PricePoint
		var effectiveAt, unitPrice string
		if err := rows.Scan(&p.ID, &effectiveAt, &unitPrice, &p.Seq); err != nil {
			return nil, err
		}
		p.EffectiveAt, err = time.Parse(instantLayout, effectiveAt)
		if err != nil {
			return nil, fmt.Errorf("bad effective_at for price %s: %w", p.ID, err)
		}
		p.UnitPrice = parseDecimal(unitPrice)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPrice(ctx context.Context, id string) (fleet.PricePoint, error) {
	var p fleet.PricePoint
	var effectiveAt, unitPrice string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, effective_at, unit_price, seq FROM price_points WHERE id = ?`, id).
		Scan(&p.ID, &effectiveAt, &unitPrice, &p.Seq)
	if err == sql.ErrNoRows {
		return fleet.PricePoint{}, &fleet.NotFoundError{Kind: "price point", ID: id}
	}
	if err != nil {
		return fleet.PricePoint{}, err
	}
	p.EffectiveAt, err = time.Parse(instantLayout, effectiveAt)
	if err != nil {
		return fleet.PricePoint{}, err
	}
	p.UnitPrice = parseDecimal(unitPrice)
	return p, nil
}

func (s *Store) UpdatePrice(ctx context.Context, p fleet.PricePoint) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE price_points SET effective_at = ?, unit_price = ? WHERE id = ?`,
			p.EffectiveAt.Format(instantLayout), p.UnitPrice.String(), p.ID)
		if err != nil {
			return err
		}
		return requireRow(res, "price point", p.ID)
	})
}

func (s *Store) DeletePrice(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM price_points WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, "price point", id)
	})
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, a fleet.AssignmentInterval) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var end interface{}
		if a.End != nil {
			end = formatDate(*a.End)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (id, driver_id, vehicle_id, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
			a.ID, string(a.DriverID), string(a.VehicleID), formatDate(a.Start), end)
		return err
	})
}

func (s *Store) ListAssignments(ctx context.Context) ([]fleet.AssignmentInterval, error) {
	return s.queryAssignments(ctx,
		`SELECT id, driver_id, vehicle_id, start_date, end_date FROM assignments ORDER BY rowid`)
}

func (s *Store) ListAssignmentsByDriver(ctx context.Context, driverID fleet.DriverID) ([]fleet.AssignmentInterval, error) {
	return s.queryAssignments(ctx,
		`SELECT id, driver_id, vehicle_id, start_date, end_date FROM assignments WHERE driver_id = ? ORDER BY rowid`,
		string(driverID))
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]fleet.AssignmentInterval, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.AssignmentInterval
	for rows.Next() {
		var a fleet.AssignmentInterval
		var driver, vehicle, start string
		var end sql.NullString
		if err := rows.Scan(&a.ID, &driver, &vehicle, &start, &end); err != nil {
			return nil, err
		}
		a.DriverID = fleet.DriverID(driver)
		a.VehicleID = fleet.VehicleID(vehicle)
		a.Start, err = parseDate(start)
		if err != nil {
			return nil, fmt.Errorf("bad start_date for assignment %s: %w", a.ID, err)
		}
		if end.Valid {
			d, err := parseDate(end.String)
			if err != nil {
				return nil, fmt.Errorf("bad end_date for assignment %s: %w", a.ID, err)
			}
			a.End = &d
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, "assignment", id)
	})
}

// =============================================================================
// FUEL REQUEST STORE
// =============================================================================

func (s *Store) SaveFuelRequest(ctx context.Context, r fleet.FuelRequest) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		cols := requestColumns(r)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO fuel_requests
			 (id, driver_id, vehicle_id, requested_date, status, note,
			  approval_amount, approval_liters, approval_station_id, approved_at, is_full_tank, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, string(r.DriverID), string(r.VehicleID), formatDate(r.RequestedDate), string(r.Status), r.Note,
			cols.amount, cols.liters, cols.station, cols.approvedAt, cols.fullTank,
			r.CreatedAt.Format(instantLayout))
		return err
	})
}

func (s *Store) UpdateFuelRequest(ctx context.Context, r fleet.FuelRequest) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		cols := requestColumns(r)
		res, err := tx.ExecContext(ctx,
			`UPDATE fuel_requests SET status = ?, note = ?,
			 approval_amount = ?, approval_liters = ?, approval_station_id = ?, approved_at = ?, is_full_tank = ?
			 WHERE id = ?`,
			string(r.Status), r.Note,
			cols.amount, cols.liters, cols.station, cols.approvedAt, cols.fullTank, r.ID)
		if err != nil {
			return err
		}
		return requireRow(res, "fuel request", r.ID)
	})
}

type approvalColumns struct {
	amount, liters, station, approvedAt, fullTank interface{}
}

func requestColumns(r fleet.FuelRequest) approvalColumns {
	var c approvalColumns
	if r.Approval != nil {
		c.amount = r.Approval.Amount.String()
		c.liters = r.Approval.Liters.String()
		c.station = string(r.Approval.StationID)
		c.approvedAt = r.Approval.ApprovedAt.Format(instantLayout)
		if r.Approval.IsFullTank {
			c.fullTank = 1
		} else {
			c.fullTank = 0
		}
	}
	return c
}

func (s *Store) GetFuelRequest(ctx context.Context, id string) (fleet.FuelRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, driver_id, vehicle_id, requested_date, status, note,
		        approval_amount, approval_liters, approval_station_id, approved_at, is_full_tank, created_at
		 FROM fuel_requests WHERE id = ?`, id)
	r, err := scanFuelRequest(row.Scan)
	if err == sql.ErrNoRows {
		return fleet.FuelRequest{}, &fleet.NotFoundError{Kind: "fuel request", ID: id}
	}
	return r, err
}

func (s *Store) ListFuelRequests(ctx context.Context) ([]fleet.FuelRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, driver_id, vehicle_id, requested_date, status, note,
		        approval_amount, approval_liters, approval_station_id, approved_at, is_full_tank, created_at
		 FROM fuel_requests ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.FuelRequest
	for rows.Next() {
		r, err := scanFuelRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanFuelRequest(scan func(dest ...interface{}) error) (fleet.FuelRequest, error) {
	var r fleet.FuelRequest
	var driver, vehicle, requested, status, createdAt string
	var note sql.NullString
	var amount, liters, station, approvedAt sql.NullString
	var fullTank sql.NullInt64

	if err := scan(&r.ID, &driver, &vehicle, &requested, &status, &note,
		&amount, &liters, &station, &approvedAt, &fullTank, &createdAt); err != nil {
		return fleet.FuelRequest{}, err
	}

	r.DriverID = fleet.DriverID(driver)
	r.VehicleID = fleet.VehicleID(vehicle)
	r.Status = fleet.RequestStatus(status)
	r.Note = note.String

	var err error
	r.RequestedDate, err = parseDate(requested)
	if err != nil {
		return fleet.FuelRequest{}, fmt.Errorf("bad requested_date for request %s: %w", r.ID, err)
	}
	r.CreatedAt, err = time.Parse(instantLayout, createdAt)
	if err != nil {
		return fleet.FuelRequest{}, fmt.Errorf("bad created_at for request %s: %w", r.ID, err)
	}

	if amount.Valid {
		approval := &fleet.Approval{
			Amount:     parseDecimal(amount.String),
			Liters:     parseDecimal(liters.String),
			StationID:  fleet.StationID(station.String),
			IsFullTank: fullTank.Int64 == 1,
		}
		if approvedAt.Valid {
			approval.ApprovedAt, err = time.Parse(instantLayout, approvedAt.String)
			if err != nil {
				return fleet.FuelRequest{}, fmt.Errorf("bad approved_at for request %s: %w", r.ID, err)
			}
		}
		r.Approval = approval
	}
	return r, nil
}

func (s *Store) DeleteFuelRequest(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM fuel_requests WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, "fuel request", id)
	})
}

// =============================================================================
// ADVANCE STORE
// =============================================================================

func (s *Store) SaveAdvance(ctx context.Context, a fleet.AdvanceRequest) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var approvedAt interface{}
		if a.ApprovedAt != nil {
			approvedAt = a.ApprovedAt.Format(instantLayout)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO advances (id, driver_id, requested_date, amount, type_id, status, note, approved_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, string(a.DriverID), formatDate(a.RequestedDate), a.Amount.String(),
			string(a.TypeID), string(a.Status), a.Note, approvedAt, a.CreatedAt.Format(instantLayout))
		return err
	})
}

func (s *Store) UpdateAdvance(ctx context.Context, a fleet.AdvanceRequest) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var approvedAt interface{}
		if a.ApprovedAt != nil {
			approvedAt = a.ApprovedAt.Format(instantLayout)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE advances SET status = ?, note = ?, approved_at = ? WHERE id = ?`,
			string(a.Status), a.Note, approvedAt, a.ID)
		if err != nil {
			return err
		}
		return requireRow(res, "advance", a.ID)
	})
}

func (s *Store) GetAdvance(ctx context.Context, id string) (fleet.AdvanceRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, driver_id, requested_date, amount, type_id, status, note, approved_at, created_at
		 FROM advances WHERE id = ?`, id)
	a, err := scanAdvance(row.Scan)
	if err == sql.ErrNoRows {
		return fleet.AdvanceRequest{}, &fleet.NotFoundError{Kind: "advance", ID: id}
	}
	return a, err
}

func (s *Store) ListAdvances(ctx context.Context) ([]fleet.AdvanceRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, driver_id, requested_date, amount, type_id, status, note, approved_at, created_at
		 FROM advances ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.AdvanceRequest
	for rows.Next() {
		a, err := scanAdvance(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAdvance(scan func(dest ...interface{}) error) (fleet.AdvanceRequest, error) {
	var a fleet.AdvanceRequest
	var driver, requested, amount, typeID, status, createdAt string
	var note, approvedAt sql.NullString

	if err := scan(&a.ID, &driver, &requested, &amount, &typeID, &status, &note, &approvedAt, &createdAt); err != nil {
		return fleet.AdvanceRequest{}, err
	}

	a.DriverID = fleet.DriverID(driver)
	a.Amount = parseDecimal(amount)
	a.TypeID = fleet.AdvanceTypeID(typeID)
	a.Status = fleet.RequestStatus(status)
	a.Note = note.String

	var err error
	a.RequestedDate, err = parseDate(requested)
	if err != nil {
		return fleet.AdvanceRequest{}, fmt.Errorf("bad requested_date for advance %s: %w", a.ID, err)
	}
	a.CreatedAt, err = time.Parse(instantLayout, createdAt)
	if err != nil {
		return fleet.AdvanceRequest{}, fmt.Errorf("bad created_at for advance %s: %w", a.ID, err)
	}
	if approvedAt.Valid {
		t, err := time.Parse(instantLayout, approvedAt.String)
		if err != nil {
			return fleet.AdvanceRequest{}, fmt.Errorf("bad approved_at for advance %s: %w", a.ID, err)
		}
		a.ApprovedAt = &t
	}
	return a, nil
}

func (s *Store) DeleteAdvance(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM advances WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, "advance", id)
	})
}

// =============================================================================
// TRIP STORE
// =============================================================================

func (s *Store) SaveTrips(ctx context.Context, trips []fleet.TripRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO trips
			 (id, transport_date, driver_name, cargo_type, ref_number, qty_20, qty_40, qty_other,
			  pickup_warehouse, delivery_warehouse, depot, return_location, salary, handling_fee, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range trips {
			if _, err := stmt.ExecContext(ctx,
				t.ID, formatDate(t.TransportDate), t.DriverName, t.CargoType, t.RefNumber,
				t.Qty20.String(), t.Qty40.String(), t.QtyOther.String(),
				t.PickupWarehouse, t.DeliveryWarehouse, t.Depot, t.ReturnLocation,
				t.Salary.String(), t.HandlingFee.String(), t.Notes); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListTrips(ctx context.Context) ([]fleet.TripRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transport_date, driver_name, cargo_type, ref_number, qty_20, qty_40, qty_other,
		        pickup_warehouse, delivery_warehouse, depot, return_location, salary, handling_fee, notes
		 FROM trips ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.TripRecord
	for rows.Next() {
		var t fleet.TripRecord
		var date, qty20, qty40, qtyOther, salary, fee string
		if err := rows.Scan(&t.ID, &date, &t.DriverName, &t.CargoType, &t.RefNumber,
			&qty20, &qty40, &qtyOther,
			&t.PickupWarehouse, &t.DeliveryWarehouse, &t.Depot, &t.ReturnLocation,
			&salary, &fee, &t.Notes); err != nil {
			return nil, err
		}
		t.TransportDate, err = parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("bad transport_date for trip %s: %w", t.ID, err)
		}
		t.Qty20 = parseDecimal(qty20)
		t.Qty40 = parseDecimal(qty40)
		t.QtyOther = parseDecimal(qtyOther)
		t.Salary = parseDecimal(salary)
		t.HandlingFee = parseDecimal(fee)
		out = append(out, t)
	}
	return out, rows.Err()
}

// =============================================================================
// REGISTRY STORE
// =============================================================================

func (s *Store) SaveDriver(ctx context.Context, d fleet.Driver) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO drivers (id, name, phone, license_no) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, phone = excluded.phone, license_no = excluded.license_no`,
			string(d.ID), d.Name, d.Phone, d.LicenseNo)
		return err
	})
}

func (s *Store) GetDriver(ctx context.Context, id fleet.DriverID) (fleet.Driver, error) {
	var d fleet.Driver
	var did string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, license_no FROM drivers WHERE id = ?`, string(id)).
		Scan(&did, &d.Name, &d.Phone, &d.LicenseNo)
	if err == sql.ErrNoRows {
		return fleet.Driver{}, &fleet.NotFoundError{Kind: "driver", ID: string(id)}
	}
	if err != nil {
		return fleet.Driver{}, err
	}
	d.ID = fleet.DriverID(did)
	return d, nil
}

func (s *Store) ListDrivers(ctx context.Context) ([]fleet.Driver, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, phone, license_no FROM drivers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.Driver
	for rows.Next() {
		var d fleet.Driver
		var id string
		if err := rows.Scan(&id, &d.Name, &d.Phone, &d.LicenseNo); err != nil {
			return nil, err
		}
		d.ID = fleet.DriverID(id)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) DeleteDriver(ctx context.Context, id fleet.DriverID) error {
	return s.deleteByID(ctx, "drivers", "driver", string(id))
}

func (s *Store) SaveVehicle(ctx context.Context, v fleet.Vehicle) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO vehicles (id, plate_number, type_id) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET plate_number = excluded.plate_number, type_id = excluded.type_id`,
			string(v.ID), v.PlateNumber, string(v.TypeID))
		return err
	})
}

func (s *Store) GetVehicle(ctx context.Context, id fleet.VehicleID) (fleet.Vehicle, error) {
	var v fleet.Vehicle
	var vid, typeID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, plate_number, type_id FROM vehicles WHERE id = ?`, string(id)).
		Scan(&vid, &v.PlateNumber, &typeID)
	if err == sql.ErrNoRows {
		return fleet.Vehicle{}, &fleet.NotFoundError{Kind: "vehicle", ID: string(id)}
	}
	if err != nil {
		return fleet.Vehicle{}, err
	}
	v.ID = fleet.VehicleID(vid)
	v.TypeID = fleet.VehicleTypeID(typeID)
	return v, nil
}

func (s *Store) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, plate_number, type_id FROM vehicles ORDER BY plate_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fleet.Vehicle
	for rows.Next() {
		var v fleet.Vehicle
		var id, typeID string
		if err := rows.Scan(&id, &v.PlateNumber, &typeID); err != nil {
			return nil, err
		}
		v.ID = fleet.VehicleID(id)
		v.TypeID = fleet.VehicleTypeID(typeID)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) DeleteVehicle(ctx context.Context, id fleet.VehicleID) error {
	return s.deleteByID(ctx, "vehicles", "vehicle", string(id))
}

func (s *Store) SaveVehicleType(ctx context.Context, vt fleet.VehicleType) error {
	return s.saveNamed(ctx, "vehicle_types", string(vt.ID), vt.Name)
}

func (s *Store) ListVehicleTypes(ctx context.Context) ([]fleet.VehicleType, error) {
	pairs, err := s.listNamed(ctx, "vehicle_types")
	if err != nil {
		return nil, err
	}
	out := make([]fleet.VehicleType, len(pairs))
	for i, p := range pairs {
		out[i] = fleet.VehicleType{ID: fleet.VehicleTypeID(p.id), Name: p.name}
	}
	return out, nil
}

func (s *Store) DeleteVehicleType(ctx context.Context, id fleet.VehicleTypeID) error {
	return s.deleteByID(ctx, "vehicle_types", "vehicle type", string(id))
}

func (s *Store) SaveStation(ctx context.Context, st fleet.Station) error {
	return s.saveNamed(ctx, "stations", string(st.ID), st.Name)
}

func (s *Store) ListStations(ctx context.Context) ([]fleet.Station, error) {
	pairs, err := s.listNamed(ctx, "stations")
	if err != nil {
		return nil, err
	}
	out := make([]fleet.Station, len(pairs))
	for i, p := range pairs {
		out[i] = fleet.Station{ID: fleet.StationID(p.id), Name: p.name}
	}
	return out, nil
}

func (s *Store) DeleteStation(ctx context.Context, id fleet.StationID) error {
	return s.deleteByID(ctx, "stations", "station", string(id))
}

func (s *Store) SaveAdvanceType(ctx context.Context, at fleet.AdvanceType) error {
	return s.saveNamed(ctx, "advance_types", string(at.ID), at.Name)
}

func (s *Store) ListAdvanceTypes(ctx context.Context) ([]fleet.AdvanceType, error) {
	pairs, err := s.listNamed(ctx, "advance_types")
	if err != nil {
		return nil, err
	}
	out := make([]fleet.AdvanceType, len(pairs))
	for i, p := range pairs {
		out[i] = fleet.AdvanceType{ID: fleet.AdvanceTypeID(p.id), Name: p.name}
	}
	return out, nil
}

func (s *Store) DeleteAdvanceType(ctx context.Context, id fleet.AdvanceTypeID) error {
	return s.deleteByID(ctx, "advance_types", "advance type", string(id))
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

type namedPair struct {
	id, name string
}

func (s *Store) saveNamed(ctx context.Context, table, id, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (id, name) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name`, id, name)
		return err
	})
}

func (s *Store) listNamed(ctx context.Context, table string) ([]namedPair, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []namedPair
	for rows.Next() {
		var p namedPair
		if err := rows.Scan(&p.id, &p.name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) deleteByID(ctx context.Context, table, kind, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, kind, id)
	})
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &fleet.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
