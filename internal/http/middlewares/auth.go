package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/session"
)

// RequireAuth valida Authorization: Bearer <token> con el guard y deja el
// session.Subject en el contexto. Sin token o token inválido/expirado: 401.
func RequireAuth(guard *session.Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subj, err := guard.Verify(r.Context(), helpers.BearerToken(r))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="authgate", error="invalid_token"`)
				errors.WriteError(w, err)
				return
			}

			ctx := session.WithSubject(r.Context(), subj)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(subj.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
