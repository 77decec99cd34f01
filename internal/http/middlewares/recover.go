package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// WithRecover captura panics y devuelve 500.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						logger.RequestID(GetRequestID(r.Context())),
						logger.Any("panic", rec),
					)
					errors.WriteError(w, errors.ErrInternalServerError.WithDetail("panic recovered"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
