/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Dates travel as "YYYY-MM-DD", instants as RFC3339, money and liters as
decimal strings ("68000", "14.71"); nothing numeric ever passes through
a float.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/armada/fleet-engine/fleet"
)

// =============================================================================
// REFERENCE ENTITIES
// =============================================================================

type DriverDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	LicenseNo string `json:"license_no,omitempty"`
}

type CreateDriverRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	LicenseNo string `json:"license_no"`
}

type VehicleDTO struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plate_number"`
	TypeID      string `json:"type_id,omitempty"`
}

type CreateVehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	TypeID      string `json:"type_id"`
}

type NamedDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateNamedRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// PRICES
// =============================================================================

type PricePointDTO struct {
	ID          string          `json:"id"`
	EffectiveAt string          `json:"effective_at"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type SavePriceRequest struct {
	EffectiveAt string          `json:"effective_at"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type ResolvedPriceDTO struct {
	At        string          `json:"at"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

type AssignmentDTO struct {
	ID        string `json:"id"`
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
	Start     string `json:"start"`
	End       string `json:"end,omitempty"`
}

type CreateAssignmentRequest struct {
	DriverID  string `json:"driver_id"`
	VehicleID string `json:"vehicle_id"`
	Start     string `json:"start"`
	End       string `json:"end,omitempty"`
}

type ResolvedAssignmentDTO struct {
	DriverID  string `json:"driver_id"`
	Date      string `json:"date"`
	VehicleID string `json:"vehicle_id"`
}

// =============================================================================
// FUEL REQUESTS
// =============================================================================

type ApprovalDTO struct {
	Amount     decimal.Decimal `json:"amount"`
	Liters     decimal.Decimal `json:"liters"`
	StationID  string          `json:"station_id"`
	ApprovedAt string          `json:"approved_at"`
	IsFullTank bool            `json:"is_full_tank"`
}

type FuelRequestDTO struct {
	ID            string       `json:"id"`
	DriverID      string       `json:"driver_id"`
	VehicleID     string       `json:"vehicle_id"`
	RequestedDate string       `json:"requested_date"`
	Status        string       `json:"status"`
	Note          string       `json:"note,omitempty"`
	Approval      *ApprovalDTO `json:"approval,omitempty"`
}

type CreateFuelRequestRequest struct {
	DriverID      string `json:"driver_id"`
	RequestedDate string `json:"requested_date"`
	Note          string `json:"note"`
}

type ApproveFuelRequestRequest struct {
	StationID  string          `json:"station_id"`
	Amount     decimal.Decimal `json:"amount"`
	IsFullTank bool            `json:"is_full_tank"`
}

type CorrectAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CreateAndApproveFuelRequest struct {
	DriverID      string          `json:"driver_id"`
	RequestedDate string          `json:"requested_date"`
	Note          string          `json:"note"`
	StationID     string          `json:"station_id"`
	Amount        decimal.Decimal `json:"amount"`
	IsFullTank    bool            `json:"is_full_tank"`
}

// =============================================================================
// ADVANCES
// =============================================================================

type AdvanceDTO struct {
	ID            string          `json:"id"`
	DriverID      string          `json:"driver_id"`
	RequestedDate string          `json:"requested_date"`
	Amount        decimal.Decimal `json:"amount"`
	TypeID        string          `json:"type_id"`
	Status        string          `json:"status"`
	Note          string          `json:"note,omitempty"`
	ApprovedAt    string          `json:"approved_at,omitempty"`
}

type CreateAdvanceRequest struct {
	DriverID      string          `json:"driver_id"`
	RequestedDate string          `json:"requested_date"`
	Amount        decimal.Decimal `json:"amount"`
	TypeID        string          `json:"type_id"`
	Note          string          `json:"note"`
}

// =============================================================================
// REPORTS
// =============================================================================

type DriverTotalDTO struct {
	DriverID string          `json:"driver_id"`
	Fuel     decimal.Decimal `json:"fuel"`
	Advance  decimal.Decimal `json:"advance"`
	Combined decimal.Decimal `json:"combined"`
}

type CargoShareDTO struct {
	CargoType string          `json:"cargo_type"`
	Trips     int             `json:"trips"`
	Percent   decimal.Decimal `json:"percent"`
}

type RangeReportDTO struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	TotalFuel    decimal.Decimal  `json:"total_fuel"`
	TotalAdvance decimal.Decimal  `json:"total_advance"`
	Drivers      []DriverTotalDTO `json:"drivers"`
	CargoMix     []CargoShareDTO  `json:"cargo_mix"`
}

// =============================================================================
// IMPORT
// =============================================================================

type TripRecordDTO struct {
	ID                string          `json:"id,omitempty"`
	TransportDate     string          `json:"transport_date"`
	DriverName        string          `json:"driver_name"`
	CargoType         string          `json:"cargo_type"`
	RefNumber         string          `json:"ref_number"`
	Qty20             decimal.Decimal `json:"qty_20"`
	Qty40             decimal.Decimal `json:"qty_40"`
	QtyOther          decimal.Decimal `json:"qty_other"`
	PickupWarehouse   string          `json:"pickup_warehouse"`
	DeliveryWarehouse string          `json:"delivery_warehouse"`
	Depot             string          `json:"depot"`
	ReturnLocation    string          `json:"return_location"`
	Salary            decimal.Decimal `json:"salary"`
	HandlingFee       decimal.Decimal `json:"handling_fee"`
	Notes             string          `json:"notes"`
}

type ImportPreviewDTO struct {
	Records []TripRecordDTO `json:"records"`
	Skipped int             `json:"skipped"`
}

type MergeTripsRequest struct {
	Records []TripRecordDTO `json:"records"`
}

// =============================================================================
// SUMMARY
// =============================================================================

type SummaryDTO struct {
	Text string `json:"text"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toDriverDTO(d fleet.Driver) DriverDTO {
	return DriverDTO{ID: string(d.ID), Name: d.Name, Phone: d.Phone, LicenseNo: d.LicenseNo}
}

func toVehicleDTO(v fleet.Vehicle) VehicleDTO {
	return VehicleDTO{ID: string(v.ID), PlateNumber: v.PlateNumber, TypeID: string(v.TypeID)}
}

func toPriceDTO(p fleet.PricePoint) PricePointDTO {
	return PricePointDTO{
		ID:          p.ID,
		EffectiveAt: p.EffectiveAt.Format(time.RFC3339),
		UnitPrice:   p.UnitPrice,
	}
}

func toAssignmentDTO(a fleet.AssignmentInterval) AssignmentDTO {
	dto := AssignmentDTO{
		ID:        a.ID,
		DriverID:  string(a.DriverID),
		VehicleID: string(a.VehicleID),
		Start:     a.Start.String(),
	}
	if a.End != nil {
		dto.End = a.End.String()
	}
	return dto
}

func toFuelRequestDTO(r fleet.FuelRequest) FuelRequestDTO {
	dto := FuelRequestDTO{
		ID:            r.ID,
		DriverID:      string(r.DriverID),
		VehicleID:     string(r.VehicleID),
		RequestedDate: r.RequestedDate.String(),
		Status:        string(r.Status),
		Note:          r.Note,
	}
	if r.Approval != nil {
		dto.Approval = &ApprovalDTO{
			Amount:     r.Approval.Amount,
			Liters:     r.Approval.Liters,
			StationID:  string(r.Approval.StationID),
			ApprovedAt: r.Approval.ApprovedAt.Format(time.RFC3339),
			IsFullTank: r.Approval.IsFullTank,
		}
	}
	return dto
}

func toAdvanceDTO(a fleet.AdvanceRequest) AdvanceDTO {
	dto := AdvanceDTO{
		ID:            a.ID,
		DriverID:      string(a.DriverID),
		RequestedDate: a.RequestedDate.String(),
		Amount:        a.Amount,
		TypeID:        string(a.TypeID),
		Status:        string(a.Status),
		Note:          a.Note,
	}
	if a.ApprovedAt != nil {
		dto.ApprovedAt = a.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

func toTripDTO(t fleet.TripRecord) TripRecordDTO {
	return TripRecordDTO{
		ID:                t.ID,
		TransportDate:     t.TransportDate.String(),
		DriverName:        t.DriverName,
		CargoType:         t.CargoType,
		RefNumber:         t.RefNumber,
		Qty20:             t.Qty20,
		Qty40:             t.Qty40,
		QtyOther:          t.QtyOther,
		PickupWarehouse:   t.PickupWarehouse,
		DeliveryWarehouse: t.DeliveryWarehouse,
		Depot:             t.Depot,
		ReturnLocation:    t.ReturnLocation,
		Salary:            t.Salary,
		HandlingFee:       t.HandlingFee,
		Notes:             t.Notes,
	}
}

func fromTripDTO(dto TripRecordDTO) (fleet.TripRecord, error) {
	date, err := fleet.ParseDate(dto.TransportDate)
	if err != nil {
		return fleet.TripRecord{}, err
	}
	return fleet.TripRecord{
		ID:                dto.ID,
		TransportDate:     date,
		DriverName:        dto.DriverName,
		CargoType:         dto.CargoType,
		RefNumber:         dto.RefNumber,
		Qty20:             dto.Qty20,
		Qty40:             dto.Qty40,
		QtyOther:          dto.QtyOther,
		PickupWarehouse:   dto.PickupWarehouse,
		DeliveryWarehouse: dto.DeliveryWarehouse,
		Depot:             dto.Depot,
		ReturnLocation:    dto.ReturnLocation,
		Salary:            dto.Salary,
		HandlingFee:       dto.HandlingFee,
		Notes:             dto.Notes,
	}, nil
}

func toReportDTO(r fleet.RangeReport) RangeReportDTO {
	dto := RangeReportDTO{
		From:         r.From.String(),
		To:           r.To.String(),
		TotalFuel:    r.TotalFuel,
		TotalAdvance: r.TotalAdvance,
	}
	for _, d := range r.Drivers {
		dto.Drivers = append(dto.Drivers, DriverTotalDTO{
			DriverID: string(d.DriverID),
			Fuel:     d.Fuel,
			Advance:  d.Advance,
			Combined: d.Combined,
		})
	}
	for _, c := range r.CargoMix {
		dto.CargoMix = append(dto.CargoMix, CargoShareDTO{
			CargoType: c.CargoType,
			Trips:     c.Trips,
			Percent:   c.Percent,
		})
	}
	return dto
}
