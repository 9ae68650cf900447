/*
registry.go - Reference entity registry

Drivers, vehicles, vehicle types, stations and advance types are simple
lookup records maintained by administrative edit. Deleting one never
repairs historical requests that reference it; callers render dangling
references as "unknown".
*/
package fleet

import (
	"context"

	"github.com/google/uuid"
)

// RegistryStore persists the reference entities.
type RegistryStore interface {
	SaveDriver(ctx context.Context, d Driver) error
	GetDriver(ctx context.Context, id DriverID) (Driver, error)
	ListDrivers(ctx context.Context) ([]Driver, error)
	DeleteDriver(ctx context.Context, id DriverID) error

	SaveVehicle(ctx context.Context, v Vehicle) error
	GetVehicle(ctx context.Context, id VehicleID) (Vehicle, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	DeleteVehicle(ctx context.Context, id VehicleID) error

	SaveVehicleType(ctx context.Context, vt VehicleType) error
	ListVehicleTypes(ctx context.Context) ([]VehicleType, error)
	DeleteVehicleType(ctx context.Context, id VehicleTypeID) error

	SaveStation(ctx context.Context, s Station) error
	ListStations(ctx context.Context) ([]Station, error)
	DeleteStation(ctx context.Context, id StationID) error

	SaveAdvanceType(ctx context.Context, at AdvanceType) error
	ListAdvanceTypes(ctx context.Context) ([]AdvanceType, error)
	DeleteAdvanceType(ctx context.Context, id AdvanceTypeID) error
}

// Registry wraps the store with id generation. Save is an upsert: creating
// and editing go through the same path, matching how the records are
// maintained in practice.
type Registry struct {
	Store RegistryStore
}

func NewRegistry(store RegistryStore) *Registry {
	return &Registry{Store: store}
}

func (r *Registry) CreateDriver(ctx context.Context, name, phone, licenseNo string) (Driver, error) {
	d := Driver{ID: DriverID(uuid.NewString()), Name: name, Phone: phone, LicenseNo: licenseNo}
	if err := r.Store.SaveDriver(ctx, d); err != nil {
		return Driver{}, err
	}
	return d, nil
}

func (r *Registry) CreateVehicle(ctx context.Context, plate string, typeID VehicleTypeID) (Vehicle, error) {
	v := Vehicle{ID: VehicleID(uuid.NewString()), PlateNumber: plate, TypeID: typeID}
	if err := r.Store.SaveVehicle(ctx, v); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (r *Registry) CreateVehicleType(ctx context.Context, name string) (VehicleType, error) {
	vt := VehicleType{ID: VehicleTypeID(uuid.NewString()), Name: name}
	if err := r.Store.SaveVehicleType(ctx, vt); err != nil {
		return VehicleType{}, err
	}
	return vt, nil
}

func (r *Registry) CreateStation(ctx context.Context, name string) (Station, error) {
	s := Station{ID: StationID(uuid.NewString()), Name: name}
	if err := r.Store.SaveStation(ctx, s); err != nil {
		return Station{}, err
	}
	return s, nil
}

func (r *Registry) CreateAdvanceType(ctx context.Context, name string) (AdvanceType, error) {
	at := AdvanceType{ID: AdvanceTypeID(uuid.NewString()), Name: name}
	if err := r.Store.SaveAdvanceType(ctx, at); err != nil {
		return AdvanceType{}, err
	}
	return at, nil
}

// DriverName resolves a driver id for display, tolerating dangling
// references.
func (r *Registry) DriverName(ctx context.Context, id DriverID) string {
	d, err := r.Store.GetDriver(ctx, id)
	if err != nil {
		return "unknown"
	}
	return d.Name
}

// VehiclePlate resolves a vehicle id for display, tolerating dangling
// references.
func (r *Registry) VehiclePlate(ctx context.Context, id VehicleID) string {
	v, err := r.Store.GetVehicle(ctx, id)
	if err != nil {
		return "unknown"
	}
	return v.PlateNumber
}
