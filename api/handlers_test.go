package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/armada/fleet-engine/api"
	"github.com/armada/fleet-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestServer runs the full router over an in-memory sqlite store, the
// same wiring as production minus the summarizer.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := api.NewHandler(store, nil, zap.NewNop())
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, server *httptest.Server, path string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

// seedDriverOnTruck creates a driver assigned to a vehicle from June 1 and
// a 6800 price point, returning the driver id.
func seedDriverOnTruck(t *testing.T, server *httptest.Server) string {
	t.Helper()

	resp, vt := postJSON(t, server, "/api/vehicle-types", map[string]interface{}{"name": "Box truck"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, vehicle := postJSON(t, server, "/api/vehicles", map[string]interface{}{
		"plate_number": "B 9301 KT", "type_id": vt["id"],
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, driver := postJSON(t, server, "/api/drivers", map[string]interface{}{"name": "Dedi Kurniawan"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = postJSON(t, server, "/api/assignments", map[string]interface{}{
		"driver_id": driver["id"], "vehicle_id": vehicle["id"], "start": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = postJSON(t, server, "/api/prices", map[string]interface{}{
		"effective_at": "2025-06-01T00:00:00Z", "unit_price": "6800",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = postJSON(t, server, "/api/stations", map[string]interface{}{"name": "Pertamina KM 12"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return driver["id"].(string)
}

func stationID(t *testing.T, server *httptest.Server) string {
	t.Helper()
	var stations []map[string]interface{}
	getJSON(t, server, "/api/stations", &stations)
	require.NotEmpty(t, stations)
	return stations[0]["id"].(string)
}

// =============================================================================
// LIFECYCLE OVER HTTP
// =============================================================================

func TestAPI_FuelRequestLifecycle(t *testing.T) {
	// GIVEN: A seeded driver, assignment and price
	// WHEN: Creating, then approving a request over HTTP
	// THEN: 201 pending, then 200 approved with computed liters

	server := newTestServer(t)
	driverID := seedDriverOnTruck(t, server)

	resp, created := postJSON(t, server, "/api/fuel-requests", map[string]interface{}{
		"driver_id": driverID, "requested_date": "2025-06-10", "note": "long haul",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", created["status"])
	assert.NotEmpty(t, created["vehicle_id"])

	resp, approved := postJSON(t, server,
		fmt.Sprintf("/api/fuel-requests/%s/approve", created["id"]),
		map[string]interface{}{"station_id": stationID(t, server), "amount": "68000"},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", approved["status"])

	approval := approved["approval"].(map[string]interface{})
	assert.Equal(t, "10", approval["liters"])
}

func TestAPI_FullTankCorrection(t *testing.T) {
	server := newTestServer(t)
	driverID := seedDriverOnTruck(t, server)

	resp, created := postJSON(t, server, "/api/fuel-requests/approved", map[string]interface{}{
		"driver_id": driverID, "requested_date": "2025-06-10",
		"station_id": stationID(t, server), "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	approval := created["approval"].(map[string]interface{})
	assert.Equal(t, true, approval["is_full_tank"])
	assert.Equal(t, "0", approval["amount"])

	resp, corrected := postJSON(t, server,
		fmt.Sprintf("/api/fuel-requests/%s/correct", created["id"]),
		map[string]interface{}{"amount": "68000"},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approval = corrected["approval"].(map[string]interface{})
	assert.Equal(t, "68000", approval["amount"])
	assert.Equal(t, "10", approval["liters"])
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_ErrorStatusCodes(t *testing.T) {
	server := newTestServer(t)
	driverID := seedDriverOnTruck(t, server)

	// No assignment covers May: 422 with a machine-readable kind.
	resp, body := postJSON(t, server, "/api/fuel-requests", map[string]interface{}{
		"driver_id": driverID, "requested_date": "2025-05-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no_vehicle_assigned", body["kind"])

	// Double approve: 409.
	resp, created := postJSON(t, server, "/api/fuel-requests", map[string]interface{}{
		"driver_id": driverID, "requested_date": "2025-06-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	approvePath := fmt.Sprintf("/api/fuel-requests/%s/approve", created["id"])
	approveBody := map[string]interface{}{"station_id": stationID(t, server), "amount": "50000"}

	resp, _ = postJSON(t, server, approvePath, approveBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = postJSON(t, server, approvePath, approveBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_state_transition", body["kind"])

	// Unknown id: 404.
	resp, body = postJSON(t, server, "/api/fuel-requests/nope/reject", map[string]interface{}{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["kind"])

	// Reversed interval: 400.
	resp, body = postJSON(t, server, "/api/assignments", map[string]interface{}{
		"driver_id": driverID, "vehicle_id": "v", "start": "2025-06-10", "end": "2025-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_interval", body["kind"])
}

func TestAPI_EmptyTimelineIs422(t *testing.T) {
	server := newTestServer(t)

	var body map[string]interface{}
	resp, err := http.Get(server.URL + "/api/prices/resolve?at=2025-06-01T00:00:00Z")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no_applicable_price", body["kind"])
}

// =============================================================================
// IMPORT AND REPORTS
// =============================================================================

func TestAPI_ImportPreviewThenMerge(t *testing.T) {
	server := newTestServer(t)

	tsv := "Transport Date\tDriver\tCargo\tRef\tQty\n" +
		"2025-06-02\tDedi\tContainer 20ft\tMSKU 1\t1\n" +
		"2025-06-03\tSurya\tContainer 40ft\tTGHU 2\t0\t1"

	resp, err := http.Post(server.URL+"/api/import/preview", "text/tab-separated-values", strings.NewReader(tsv))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))
	records := preview["records"].([]interface{})
	assert.Len(t, records, 2)
	assert.Equal(t, float64(1), preview["skipped"])

	resp2, merged := postJSON(t, server, "/api/import/merge", map[string]interface{}{"records": records})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, float64(2), merged["merged"])

	// Merged trips show up in the cargo mix.
	var report map[string]interface{}
	getJSON(t, server, "/api/reports?from=2025-06-01&to=2025-06-30", &report)
	assert.Len(t, report["cargo_mix"], 2)
}

func TestAPI_SummaryWithoutServiceIsNeutral(t *testing.T) {
	// No summarizer configured: the endpoint still answers 200 with the
	// neutral advisory string.
	server := newTestServer(t)

	resp, body := postJSON(t, server, "/api/summary", map[string]interface{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["text"])
}

func TestAPI_DemoScenarioLoads(t *testing.T) {
	server := newTestServer(t)

	resp, _ := postJSON(t, server, "/api/scenarios/demo", map[string]interface{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var drivers []map[string]interface{}
	getJSON(t, server, "/api/drivers", &drivers)
	assert.NotEmpty(t, drivers)

	var requests []map[string]interface{}
	getJSON(t, server, "/api/fuel-requests", &requests)
	assert.NotEmpty(t, requests)
}
