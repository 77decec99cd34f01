package router

import "github.com/go-chi/chi/v5"

// /healthz y /readyz son públicos.
func registerHealthRoutes(r chi.Router, d Deps) {
	if d.Health == nil {
		return
	}
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
}
