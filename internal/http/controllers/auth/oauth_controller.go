package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	svc "github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// OAuthController maneja el flujo de navegador: GET /auth/{provider} y su callback.
type OAuthController struct {
	service svc.Service
}

func NewOAuthController(service svc.Service) *OAuthController {
	return &OAuthController{service: service}
}

// Begin redirige a la pantalla de consentimiento del provider.
func (c *OAuthController) Begin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")

	u, err := c.service.BeginOAuth(ctx, provider)
	if err != nil {
		logger.From(ctx).Debug("oauth begin failed",
			logger.Layer("controller"), logger.Provider(provider), logger.Err(err))
		writeAuthError(w, err)
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

// Callback siempre redirige al frontend, con token o con ?error=.
func (c *OAuthController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	u, err := c.service.Callback(ctx, provider, svc.CallbackInput{
		State: q.Get("state"),
		Code:  q.Get("code"),
		Error: q.Get("error"),
	})
	if err != nil {
		logger.From(ctx).Warn("oauth callback failed",
			logger.Layer("controller"), logger.Provider(provider), logger.Err(err))
	}
	http.Redirect(w, r, u, http.StatusFound)
}
