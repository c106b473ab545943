package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupDataRouter builds the device-facing router. Ingestion is API-key
// authenticated.
func SetupDataRouter(h *APIHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.With(h.auth.APIKeyMiddleware).Post("/data", h.HandleDataIngest)

	return r
}

// SetupDashboardRouter builds the operator-facing router. Everything under
// /api except login requires a JWT; the websocket feed is open so dashboards
// can connect before login completes.
func SetupDashboardRouter(h *APIHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/login", h.HandleLogin)
	r.Get("/ws", h.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.JWTMiddleware)

		r.Get("/api/devices", h.HandleDevices)
		r.Get("/api/devices/{deviceID}/latest", h.HandleLatest)
		r.Get("/api/devices/{deviceID}/readings", h.HandleReadings)
		r.Get("/api/devices/{deviceID}/aggregate", h.HandleAggregate)
		r.Get("/api/devices/{deviceID}/summary", h.HandleSummary)
		r.Get("/api/devices/{deviceID}/trend", h.HandleTrend)
		r.Get("/api/alerts", h.HandleAlerts)
	})

	return r
}
