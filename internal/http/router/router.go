// Package router arma el chi.Router con todas las rutas y middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/authgate/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authgate/internal/http/controllers/health"
	userctrl "github.com/dropDatabas3/authgate/internal/http/controllers/user"
	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	mw "github.com/dropDatabas3/authgate/internal/http/middlewares"
	"github.com/dropDatabas3/authgate/internal/rate"
	"github.com/dropDatabas3/authgate/internal/session"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	Auth   *authctrl.Controllers
	User   *userctrl.Controllers
	Health *healthctrl.HealthController

	Guard *session.Guard

	// Limiters opcionales (nil = sin límite).
	LoginLimiter   rate.Limiter
	RecoverLimiter rate.Limiter

	// Metrics se monta en /metrics si no es nil (sin listener aparte).
	Metrics http.Handler
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithSecurityHeaders(),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerHealthRoutes(r, d)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		registerAuthRoutes(r, d)
		registerUserRoutes(r, d)
	})
	return r
}
