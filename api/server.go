/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zap logger: Structured request logging
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/drivers, /api/vehicles, /api/vehicle-types,
  /api/stations, /api/advance-types     Registry
  /api/prices/*                         Price timeline
  /api/assignments/*                    Assignment ledger
  /api/fuel-requests/*                  Disbursement lifecycle
  /api/advances/*                       Advance lifecycle
  /api/reports                          Range aggregation
  /api/import/*                         Bulk trip import
  /api/summary                          External analysis text
  /api/scenarios/demo                   Seed dataset (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public; run behind a
  trusted network boundary.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Registry routes
		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", h.ListDrivers)
			r.Post("/", h.CreateDriver)
			r.Put("/{id}", h.UpdateDriver)
			r.Delete("/{id}", h.DeleteDriver)
		})
		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", h.ListVehicles)
			r.Post("/", h.CreateVehicle)
			r.Delete("/{id}", h.DeleteVehicle)
		})
		r.Route("/vehicle-types", func(r chi.Router) {
			r.Get("/", h.ListVehicleTypes)
			r.Post("/", h.CreateVehicleType)
			r.Delete("/{id}", h.DeleteVehicleType)
		})
		r.Route("/stations", func(r chi.Router) {
			r.Get("/", h.ListStations)
			r.Post("/", h.CreateStation)
			r.Delete("/{id}", h.DeleteStation)
		})
		r.Route("/advance-types", func(r chi.Router) {
			r.Get("/", h.ListAdvanceTypes)
			r.Post("/", h.CreateAdvanceType)
			r.Delete("/{id}", h.DeleteAdvanceType)
		})

		// Price timeline routes
		r.Route("/prices", func(r chi.Router) {
			r.Get("/", h.ListPrices)
			r.Post("/", h.CreatePrice)
			r.Get("/resolve", h.ResolvePrice)
			r.Put("/{id}", h.UpdatePrice)
			r.Delete("/{id}", h.DeletePrice)
		})

		// Assignment ledger routes
		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", h.ListAssignments)
			r.Post("/", h.CreateAssignment)
			r.Get("/resolve", h.ResolveAssignment)
			r.Delete("/{id}", h.DeleteAssignment)
		})

		// Fuel request routes
		r.Route("/fuel-requests", func(r chi.Router) {
			r.Get("/", h.ListFuelRequests)
			r.Post("/", h.CreateFuelRequest)
			r.Post("/approved", h.CreateAndApproveFuelRequest)
			r.Post("/{id}/approve", h.ApproveFuelRequest)
			r.Post("/{id}/reject", h.RejectFuelRequest)
			r.Post("/{id}/correct", h.CorrectFuelRequest)
			r.Delete("/{id}", h.DeleteFuelRequest)
		})

		// Advance routes
		r.Route("/advances", func(r chi.Router) {
			r.Get("/", h.ListAdvances)
			r.Post("/", h.CreateAdvance)
			r.Post("/approved", h.CreateAndApproveAdvance)
			r.Post("/{id}/approve", h.ApproveAdvance)
			r.Post("/{id}/reject", h.RejectAdvance)
			r.Delete("/{id}", h.DeleteAdvance)
		})

		// Reports
		r.Get("/reports", h.GetReport)

		// Bulk import
		r.Route("/import", func(r chi.Router) {
			r.Post("/preview", h.PreviewImport)
			r.Post("/merge", h.MergeImport)
		})

		// External summary
		r.Post("/summary", h.GetSummary)

		// Demo scenario (dev only)
		r.Post("/scenarios/demo", h.LoadDemoScenario)
	})

	return r
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
