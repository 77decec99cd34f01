package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
)

func registerUserRoutes(r chi.Router, d Deps) {
	c := d.User
	if c == nil {
		return
	}

	r.Route("/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: d.RecoverLimiter,
				KeyFunc: mw.IPOnlyRateKey,
				Scope:   "recover",
			}))
			r.Post("/recover-password", c.Password.Recover)
			r.Post("/reset-password", c.Password.Reset)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(d.Guard))
			r.Get("/{id}", c.Profile.Get)
			r.Put("/{id}", c.Profile.Update)
			r.Delete("/{id}", c.Profile.Delete)
		})
	})
}
