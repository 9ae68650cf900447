// Package store provides in-memory implementations of the fleet store
// interfaces, used in tests and for single-session development runs.
package store

import (
	"context"
	"sync"

	"github.com/armada/fleet-engine/fleet"
)

// =============================================================================
// MEMORY STORE - Implements every fleet store interface
// =============================================================================

// Memory serializes every operation behind one mutex: the engine's
// single-writer discipline, enforced at the store boundary.
type Memory struct {
	mu sync.RWMutex

	prices      []fleet.PricePoint
	priceSeq    int64
	assignments []fleet.AssignmentInterval
	requests    map[string]fleet.FuelRequest
	requestIDs  []string
	advances    map[string]fleet.AdvanceRequest
	advanceIDs  []string
	trips       []fleet.TripRecord

	drivers      map[fleet.DriverID]fleet.Driver
	vehicles     map[fleet.VehicleID]fleet.Vehicle
	vehicleTypes map[fleet.VehicleTypeID]fleet.VehicleType
	stations     map[fleet.StationID]fleet.Station
	advanceTypes map[fleet.AdvanceTypeID]fleet.AdvanceType
}

func NewMemory() *Memory {
	return &Memory{
		requests:     make(map[string]fleet.FuelRequest),
		advances:     make(map[string]fleet.AdvanceRequest),
		drivers:      make(map[fleet.DriverID]fleet.Driver),
		vehicles:     make(map[fleet.VehicleID]fleet.Vehicle),
		vehicleTypes: make(map[fleet.VehicleTypeID]fleet.VehicleType),
		stations:     make(map[fleet.StationID]fleet.Station),
		advanceTypes: make(map[fleet.AdvanceTypeID]fleet.AdvanceType),
	}
}

// =============================================================================
// PRICE STORE
// =============================================================================

func (m *Memory) SavePrice(_ context.Context, p fleet.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceSeq++
	p.Seq = m.priceSeq
	m.prices = append(m.prices, p)
	return nil
}

func (m *Memory) ListPrices(_ context.Context) ([]fleet.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.PricePoint, len(m.prices))
	copy(out, m.prices)
	return out, nil
}

func (m *Memory) GetPrice(_ context.Context, id string) (fleet.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.prices {
		if p.ID == id {
			return p, nil
		}
	}
	return fleet.PricePoint{}, &fleet.NotFoundError{Kind: "price point", ID: id}
}

func (m *Memory) UpdatePrice(_ context.Context, p fleet.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.prices {
		if m.prices[i].ID == p.ID {
			p.Seq = m.prices[i].Seq
			m.prices[i] = p
			return nil
		}
	}
	return &fleet.NotFoundError{Kind: "price point", ID: p.ID}
}

func (m *Memory) DeletePrice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.prices {
		if m.prices[i].ID == id {
			m.prices = append(m.prices[:i], m.prices[i+1:]...)
			return nil
		}
	}
	return &fleet.NotFoundError{Kind: "price point", ID: id}
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (m *Memory) SaveAssignment(_ context.Context, a fleet.AssignmentInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *Memory) ListAssignments(_ context.Context) ([]fleet.AssignmentInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.AssignmentInterval, len(m.assignments))
	copy(out, m.assignments)
	return out, nil
}

func (m *Memory) ListAssignmentsByDriver(_ context.Context, driverID fleet.DriverID) ([]fleet.AssignmentInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []fleet.AssignmentInterval
	for _, a := range m.assignments {
		if a.DriverID == driverID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.assignments {
		if m.assignments[i].ID == id {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return nil
		}
	}
	return &fleet.NotFoundError{Kind: "assignment", ID: id}
}

// =============================================================================
// FUEL REQUEST STORE
// =============================================================================

func (m *Memory) SaveFuelRequest(_ context.Context, r fleet.FuelRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		m.requestIDs = append(m.requestIDs, r.ID)
	}
	m.requests[r.ID] = copyRequest(r)
	return nil
}

func (m *Memory) GetFuelRequest(_ context.Context, id string) (fleet.FuelRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return fleet.FuelRequest{}, &fleet.NotFoundError{Kind: "fuel request", ID: id}
	}
	return copyRequest(r), nil
}

func (m *Memory) UpdateFuelRequest(_ context.Context, r fleet.FuelRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		return &fleet.NotFoundError{Kind: "fuel request", ID: r.ID}
	}
	m.requests[r.ID] = copyRequest(r)
	return nil
}

func (m *Memory) DeleteFuelRequest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return &fleet.NotFoundError{Kind: "fuel request", ID: id}
	}
	delete(m.requests, id)
	for i, rid := range m.requestIDs {
		if rid == id {
			m.requestIDs = append(m.requestIDs[:i], m.requestIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListFuelRequests(_ context.Context) ([]fleet.FuelRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.FuelRequest, 0, len(m.requestIDs))
	for _, id := range m.requestIDs {
		out = append(out, copyRequest(m.requests[id]))
	}
	return out, nil
}

func copyRequest(r fleet.FuelRequest) fleet.FuelRequest {
	if r.Approval != nil {
		a := *r.Approval
		r.Approval = &a
	}
	return r
}

// =============================================================================
// ADVANCE STORE
// =============================================================================

func (m *Memory) SaveAdvance(_ context.Context, a fleet.AdvanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.advances[a.ID]; !ok {
		m.advanceIDs = append(m.advanceIDs, a.ID)
	}
	m.advances[a.ID] = copyAdvance(a)
	return nil
}

func (m *Memory) GetAdvance(_ context.Context, id string) (fleet.AdvanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.advances[id]
	if !ok {
		return fleet.AdvanceRequest{}, &fleet.NotFoundError{Kind: "advance", ID: id}
	}
	return copyAdvance(a), nil
}

func (m *Memory) UpdateAdvance(_ context.Context, a fleet.AdvanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.advances[a.ID]; !ok {
		return &fleet.NotFoundError{Kind: "advance", ID: a.ID}
	}
	m.advances[a.ID] = copyAdvance(a)
	return nil
}

func (m *Memory) DeleteAdvance(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.advances[id]; !ok {
		return &fleet.NotFoundError{Kind: "advance", ID: id}
	}
	delete(m.advances, id)
	for i, aid := range m.advanceIDs {
		if aid == id {
			m.advanceIDs = append(m.advanceIDs[:i], m.advanceIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListAdvances(_ context.Context) ([]fleet.AdvanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.AdvanceRequest, 0, len(m.advanceIDs))
	for _, id := range m.advanceIDs {
		out = append(out, copyAdvance(m.advances[id]))
	}
	return out, nil
}

func copyAdvance(a fleet.AdvanceRequest) fleet.AdvanceRequest {
	if a.ApprovedAt != nil {
		t := *a.ApprovedAt
		a.ApprovedAt = &t
	}
	return a
}

// =============================================================================
// TRIP STORE
// =============================================================================

func (m *Memory) SaveTrips(_ context.Context, trips []fleet.TripRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Single append under the lock: the batch lands whole or not at all.
	m.trips = append(m.trips, trips...)
	return nil
}

func (m *Memory) ListTrips(_ context.Context) ([]fleet.TripRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.TripRecord, len(m.trips))
	copy(out, m.trips)
	return out, nil
}

// =============================================================================
// REGISTRY STORE
// =============================================================================

func (m *Memory) SaveDriver(_ context.Context, d fleet.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
	return nil
}

func (m *Memory) GetDriver(_ context.Context, id fleet.DriverID) (fleet.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return fleet.Driver{}, &fleet.NotFoundError{Kind: "driver", ID: string(id)}
	}
	return d, nil
}

func (m *Memory) ListDrivers(_ context.Context) ([]fleet.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out = append(out, d)
	}
	return out, nil
}

func (m *Memory) DeleteDriver(_ context.Context, id fleet.DriverID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[id]; !ok {
		return &fleet.NotFoundError{Kind: "driver", ID: string(id)}
	}
	delete(m.drivers, id)
	return nil
}

func (m *Memory) SaveVehicle(_ context.Context, v fleet.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
	return nil
}

func (m *Memory) GetVehicle(_ context.Context, id fleet.VehicleID) (fleet.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return fleet.Vehicle{}, &fleet.NotFoundError{Kind: "vehicle", ID: string(id)}
	}
	return v, nil
}

func (m *Memory) ListVehicles(_ context.Context) ([]fleet.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (m *Memory) DeleteVehicle(_ context.Context, id fleet.VehicleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return &fleet.NotFoundError{Kind: "vehicle", ID: string(id)}
	}
	delete(m.vehicles, id)
	return nil
}

func (m *Memory) SaveVehicleType(_ context.Context, vt fleet.VehicleType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicleTypes[vt.ID] = vt
	return nil
}

func (m *Memory) ListVehicleTypes(_ context.Context) ([]fleet.VehicleType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.VehicleType, 0, len(m.vehicleTypes))
	for _, vt := range m.vehicleTypes {
		out = append(out, vt)
	}
	return out, nil
}

func (m *Memory) DeleteVehicleType(_ context.Context, id fleet.VehicleTypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicleTypes[id]; !ok {
		return &fleet.NotFoundError{Kind: "vehicle type", ID: string(id)}
	}
	delete(m.vehicleTypes, id)
	return nil
}

func (m *Memory) SaveStation(_ context.Context, s fleet.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[s.ID] = s
	return nil
}

func (m *Memory) ListStations(_ context.Context) ([]fleet.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.Station, 0, len(m.stations))
	for _, s := range m.stations {
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) DeleteStation(_ context.Context, id fleet.StationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[id]; !ok {
		return &fleet.NotFoundError{Kind: "station", ID: string(id)}
	}
	delete(m.stations, id)
	return nil
}

func (m *Memory) SaveAdvanceType(_ context.Context, at fleet.AdvanceType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceTypes[at.ID] = at
	return nil
}

func (m *Memory) ListAdvanceTypes(_ context.Context) ([]fleet.AdvanceType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]fleet.AdvanceType, 0, len(m.advanceTypes))
	for _, at := range m.advanceTypes {
		out = append(out, at)
	}
	return out, nil
}

func (m *Memory) DeleteAdvanceType(_ context.Context, id fleet.AdvanceTypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.advanceTypes[id]; !ok {
		return &fleet.NotFoundError{Kind: "advance type", ID: string(id)}
	}
	delete(m.advanceTypes, id)
	return nil
}
