package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
)

func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Auth
	if c == nil {
		return
	}

	r.Route("/auth", func(r chi.Router) {
		// login y alta: límite por ip|path|email
		r.Group(func(r chi.Router) {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: d.LoginLimiter,
				KeyFunc: mw.LoginRateKey,
				Scope:   "login",
			}))
			r.Post("/register", c.Register.Register)
			r.Post("/login", c.Login.Login)
			r.Post("/login/{provider}", c.Login.ProviderLogin)
		})

		r.With(mw.RequireAuth(d.Guard)).Post("/logout", c.Logout.Logout)

		// flujo de navegador
		r.Get("/{provider}", c.OAuth.Begin)
		r.Get("/{provider}/callback", c.OAuth.Callback)
	})
}
