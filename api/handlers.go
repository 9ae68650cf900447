/*
handlers.go - HTTP API handlers for the fleet disbursement engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the domain services.

ENDPOINTS:
  Registry:
    GET/POST       /api/drivers, /api/vehicles, /api/vehicle-types,
                   /api/stations, /api/advance-types
    DELETE         /api/<collection>/{id}

  Prices:
    GET/POST       /api/prices
    PUT/DELETE     /api/prices/{id}
    GET            /api/prices/resolve?at=RFC3339

  Assignments:
    GET/POST       /api/assignments
    DELETE         /api/assignments/{id}
    GET            /api/assignments/resolve?driver_id=&date=

  Fuel requests:
    GET/POST       /api/fuel-requests
    POST           /api/fuel-requests/approved        (create+approve)
    POST           /api/fuel-requests/{id}/approve
    POST           /api/fuel-requests/{id}/reject
    POST           /api/fuel-requests/{id}/correct
    DELETE         /api/fuel-requests/{id}

  Advances:
    GET/POST       /api/advances
    POST           /api/advances/approved
    POST           /api/advances/{id}/approve
    POST           /api/advances/{id}/reject
    DELETE         /api/advances/{id}

  Reports / import / summary:
    GET            /api/reports?from=&to=
    POST           /api/import/preview   (raw TSV body)
    POST           /api/import/merge
    POST           /api/summary

ERROR HANDLING:
  Typed domain failures map to status codes so a UI can render a specific
  actionable message:
  - 400: invalid input, invalid/duplicate interval
  - 404: missing ids
  - 409: illegal state transition
  - 422: no vehicle assigned / no applicable price
  - 500: everything else
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/armada/fleet-engine/fleet"
	"github.com/armada/fleet-engine/importer"
	"github.com/armada/fleet-engine/summary"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Registry    *fleet.Registry
	Prices      *fleet.PriceTimeline
	Assignments *fleet.AssignmentLedger
	Fuel        *fleet.DisbursementService
	Advances    *fleet.AdvanceService
	Reporter    *fleet.Reporter
	Trips       fleet.TripStore
	Summarizer  summary.Summarizer
	Log         *zap.Logger
}

// Stores bundles the store interfaces the engine needs; both the sqlite and
// the in-memory store satisfy all of them.
type Stores interface {
	fleet.PriceStore
	fleet.AssignmentStore
	fleet.FuelRequestStore
	fleet.AdvanceStore
	fleet.TripStore
	fleet.RegistryStore
}

// NewHandler wires the domain services over one store.
func NewHandler(stores Stores, summarizer summary.Summarizer, log *zap.Logger) *Handler {
	prices := fleet.NewPriceTimeline(stores)
	assignments := fleet.NewAssignmentLedger(stores)
	return &Handler{
		Registry:    fleet.NewRegistry(stores),
		Prices:      prices,
		Assignments: assignments,
		Fuel:        fleet.NewDisbursementService(stores, assignments, prices),
		Advances:    fleet.NewAdvanceService(stores),
		Reporter:    fleet.NewReporter(stores, stores, stores),
		Trips:       stores,
		Summarizer:  summarizer,
		Log:         log,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("write response", zap.Error(err))
	}
}

type errorDTO struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, fleet.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, fleet.ErrNoVehicleAssigned):
		status, kind = http.StatusUnprocessableEntity, "no_vehicle_assigned"
	case errors.Is(err, fleet.ErrNoApplicablePrice):
		status, kind = http.StatusUnprocessableEntity, "no_applicable_price"
	case errors.Is(err, fleet.ErrInvalidStateTransition):
		status, kind = http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, fleet.ErrInvalidInterval):
		status, kind = http.StatusBadRequest, "invalid_interval"
	case errors.Is(err, fleet.ErrDuplicateInterval):
		status, kind = http.StatusBadRequest, "duplicate_interval"
	case errors.Is(err, fleet.ErrInvalidCommand):
		status, kind = http.StatusBadRequest, "invalid_command"
	}

	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorDTO{Error: err.Error(), Kind: kind})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorDTO{Error: "invalid JSON: " + err.Error(), Kind: "invalid_command"})
		return false
	}
	return true
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, errorDTO{Error: msg, Kind: "invalid_command"})
}

// =============================================================================
// REGISTRY HANDLERS
// =============================================================================

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Registry.Store.ListDrivers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]DriverDTO, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, toDriverDTO(d))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	d, err := h.Registry.CreateDriver(r.Context(), req.Name, req.Phone, req.LicenseNo)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toDriverDTO(d))
}

func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	id := fleet.DriverID(chi.URLParam(r, "id"))
	var req CreateDriverRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.Registry.Store.GetDriver(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	d := fleet.Driver{ID: id, Name: req.Name, Phone: req.Phone, LicenseNo: req.LicenseNo}
	if err := h.Registry.Store.SaveDriver(r.Context(), d); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toDriverDTO(d))
}

func (h *Handler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Store.DeleteDriver(r.Context(), fleet.DriverID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Registry.Store.ListVehicles(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]VehicleDTO, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleDTO(v))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.PlateNumber == "" {
		h.badRequest(w, "plate_number is required")
		return
	}
	v, err := h.Registry.CreateVehicle(r.Context(), req.PlateNumber, fleet.VehicleTypeID(req.TypeID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toVehicleDTO(v))
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Store.DeleteVehicle(r.Context(), fleet.VehicleID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListVehicleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Registry.Store.ListVehicleTypes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]NamedDTO, 0, len(types))
	for _, t := range types {
		out = append(out, NamedDTO{ID: string(t.ID), Name: t.Name})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateVehicleType(w http.ResponseWriter, r *http.Request) {
	var req CreateNamedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	vt, err := h.Registry.CreateVehicleType(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, NamedDTO{ID: string(vt.ID), Name: vt.Name})
}

func (h *Handler) DeleteVehicleType(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Store.DeleteVehicleType(r.Context(), fleet.VehicleTypeID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.Registry.Store.ListStations(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]NamedDTO, 0, len(stations))
	for _, s := range stations {
		out = append(out, NamedDTO{ID: string(s.ID), Name: s.Name})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateStation(w http.ResponseWriter, r *http.Request) {
	var req CreateNamedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	s, err := h.Registry.CreateStation(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, NamedDTO{ID: string(s.ID), Name: s.Name})
}

func (h *Handler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Store.DeleteStation(r.Context(), fleet.StationID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAdvanceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Registry.Store.ListAdvanceTypes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]NamedDTO, 0, len(types))
	for _, t := range types {
		out = append(out, NamedDTO{ID: string(t.ID), Name: t.Name})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAdvanceType(w http.ResponseWriter, r *http.Request) {
	var req CreateNamedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	at, err := h.Registry.CreateAdvanceType(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, NamedDTO{ID: string(at.ID), Name: at.Name})
}

func (h *Handler) DeleteAdvanceType(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Store.DeleteAdvanceType(r.Context(), fleet.AdvanceTypeID(chi.URLParam(r, "id"))); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PRICE HANDLERS
// =============================================================================

func (h *Handler) ListPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Prices.Store.ListPrices(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]PricePointDTO, 0, len(prices))
	for _, p := range prices {
		out = append(out, toPriceDTO(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreatePrice(w http.ResponseWriter, r *http.Request) {
	var req SavePriceRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := time.Parse(time.RFC3339, req.EffectiveAt)
	if err != nil {
		h.badRequest(w, "effective_at must be RFC3339")
		return
	}
	p, err := h.Prices.CreatePoint(r.Context(), at, req.UnitPrice)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toPriceDTO(p))
}

func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req SavePriceRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := time.Parse(time.RFC3339, req.EffectiveAt)
	if err != nil {
		h.badRequest(w, "effective_at must be RFC3339")
		return
	}
	p, err := h.Prices.UpdatePoint(r.Context(), chi.URLParam(r, "id"), at, req.UnitPrice)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPriceDTO(p))
}

func (h *Handler) DeletePrice(w http.ResponseWriter, r *http.Request) {
	if err := h.Prices.DeletePoint(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResolvePrice(w http.ResponseWriter, r *http.Request) {
	atParam := r.URL.Query().Get("at")
	at := time.Now()
	if atParam != "" {
		parsed, err := time.Parse(time.RFC3339, atParam)
		if err != nil {
			h.badRequest(w, "at must be RFC3339")
			return
		}
		at = parsed
	}
	price, err := h.Prices.Resolve(r.Context(), at)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ResolvedPriceDTO{At: at.Format(time.RFC3339), UnitPrice: price})
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Assignments.Store.ListAssignments(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentDTO(a))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.DriverID == "" || req.VehicleID == "" {
		h.badRequest(w, "driver_id and vehicle_id are required")
		return
	}
	start, err := fleet.ParseDate(req.Start)
	if err != nil {
		h.badRequest(w, "start must be YYYY-MM-DD")
		return
	}
	var end *fleet.Date
	if req.End != "" {
		parsed, err := fleet.ParseDate(req.End)
		if err != nil {
			h.badRequest(w, "end must be YYYY-MM-DD")
			return
		}
		end = &parsed
	}
	a, err := h.Assignments.CreateInterval(r.Context(), fleet.DriverID(req.DriverID), fleet.VehicleID(req.VehicleID), start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.Assignments.DeleteInterval(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResolveAssignment(w http.ResponseWriter, r *http.Request) {
	driverID := r.URL.Query().Get("driver_id")
	if driverID == "" {
		h.badRequest(w, "driver_id is required")
		return
	}
	date, err := fleet.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	vehicleID, err := h.Assignments.Resolve(r.Context(), fleet.DriverID(driverID), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ResolvedAssignmentDTO{
		DriverID:  driverID,
		Date:      date.String(),
		VehicleID: string(vehicleID),
	})
}

// =============================================================================
// FUEL REQUEST HANDLERS
// =============================================================================

func (h *Handler) ListFuelRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Fuel.Requests.ListFuelRequests(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]FuelRequestDTO, 0, len(requests))
	for _, req := range requests {
		out = append(out, toFuelRequestDTO(req))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateFuelRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateFuelRequestRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := fleet.ParseDate(req.RequestedDate)
	if err != nil {
		h.badRequest(w, "requested_date must be YYYY-MM-DD")
		return
	}
	created, err := h.Fuel.Create(r.Context(), fleet.CreateFuelRequestCommand{
		DriverID:      fleet.DriverID(req.DriverID),
		RequestedDate: date,
		Note:          req.Note,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toFuelRequestDTO(created))
}

func (h *Handler) ApproveFuelRequest(w http.ResponseWriter, r *http.Request) {
	var req ApproveFuelRequestRequest
	if !h.decode(w, r, &req) {
		return
	}
	approved, err := h.Fuel.Approve(r.Context(), fleet.ApproveFuelRequestCommand{
		RequestID:  chi.URLParam(r, "id"),
		StationID:  fleet.StationID(req.StationID),
		Amount:     req.Amount,
		IsFullTank: req.IsFullTank,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toFuelRequestDTO(approved))
}

func (h *Handler) RejectFuelRequest(w http.ResponseWriter, r *http.Request) {
	rejected, err := h.Fuel.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toFuelRequestDTO(rejected))
}

func (h *Handler) CorrectFuelRequest(w http.ResponseWriter, r *http.Request) {
	var req CorrectAmountRequest
	if !h.decode(w, r, &req) {
		return
	}
	corrected, err := h.Fuel.CorrectApprovedAmount(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toFuelRequestDTO(corrected))
}

func (h *Handler) DeleteFuelRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Fuel.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateAndApproveFuelRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateAndApproveFuelRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := fleet.ParseDate(req.RequestedDate)
	if err != nil {
		h.badRequest(w, "requested_date must be YYYY-MM-DD")
		return
	}
	created, err := h.Fuel.CreateAndApprove(r.Context(), fleet.CreateFuelRequestCommand{
		DriverID:      fleet.DriverID(req.DriverID),
		RequestedDate: date,
		Note:          req.Note,
	}, fleet.StationID(req.StationID), req.Amount, req.IsFullTank)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toFuelRequestDTO(created))
}

// =============================================================================
// ADVANCE HANDLERS
// =============================================================================

func (h *Handler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	advances, err := h.Advances.Store.ListAdvances(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]AdvanceDTO, 0, len(advances))
	for _, a := range advances {
		out = append(out, toAdvanceDTO(a))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) advanceCommand(w http.ResponseWriter, r *http.Request) (fleet.CreateAdvanceCommand, bool) {
	var req CreateAdvanceRequest
	if !h.decode(w, r, &req) {
		return fleet.CreateAdvanceCommand{}, false
	}
	date, err := fleet.ParseDate(req.RequestedDate)
	if err != nil {
		h.badRequest(w, "requested_date must be YYYY-MM-DD")
		return fleet.CreateAdvanceCommand{}, false
	}
	return fleet.CreateAdvanceCommand{
		DriverID:      fleet.DriverID(req.DriverID),
		RequestedDate: date,
		Amount:        req.Amount,
		TypeID:        fleet.AdvanceTypeID(req.TypeID),
		Note:          req.Note,
	}, true
}

func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.advanceCommand(w, r)
	if !ok {
		return
	}
	created, err := h.Advances.Create(r.Context(), cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAdvanceDTO(created))
}

func (h *Handler) CreateAndApproveAdvance(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.advanceCommand(w, r)
	if !ok {
		return
	}
	created, err := h.Advances.CreateAndApprove(r.Context(), cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAdvanceDTO(created))
}

func (h *Handler) ApproveAdvance(w http.ResponseWriter, r *http.Request) {
	approved, err := h.Advances.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAdvanceDTO(approved))
}

func (h *Handler) RejectAdvance(w http.ResponseWriter, r *http.Request) {
	rejected, err := h.Advances.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAdvanceDTO(rejected))
}

func (h *Handler) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	if err := h.Advances.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	from, err := fleet.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		h.badRequest(w, "from must be YYYY-MM-DD")
		return
	}
	to, err := fleet.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		h.badRequest(w, "to must be YYYY-MM-DD")
		return
	}
	report, err := h.Reporter.Aggregate(r.Context(), from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	preview, err := importer.Parse(r.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dto := ImportPreviewDTO{Skipped: preview.Skipped, Records: make([]TripRecordDTO, 0, len(preview.Records))}
	for _, rec := range preview.Records {
		dto.Records = append(dto.Records, toTripDTO(rec))
	}
	h.writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) MergeImport(w http.ResponseWriter, r *http.Request) {
	var req MergeTripsRequest
	if !h.decode(w, r, &req) {
		return
	}
	records := make([]fleet.TripRecord, 0, len(req.Records))
	for _, dto := range req.Records {
		rec, err := fromTripDTO(dto)
		if err != nil {
			h.badRequest(w, "transport_date must be YYYY-MM-DD")
			return
		}
		records = append(records, rec)
	}
	if err := importer.Merge(r.Context(), h.Trips, records); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"merged": len(records)})
}

// =============================================================================
// SUMMARY HANDLER
// =============================================================================

// GetSummary builds a read-only snapshot and asks the external service for
// display text. A failed or slow summarizer yields the neutral string; it
// never surfaces as an error and never touches ledger state.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := fleet.BuildSnapshot(r.Context(), h.Fuel.Requests, h.Prices.Store)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	text := <-summary.Async(ctx, h.Summarizer, snap)
	h.writeJSON(w, http.StatusOK, SummaryDTO{Text: text})
}
