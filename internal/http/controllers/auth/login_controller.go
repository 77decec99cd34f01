package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// LoginController maneja POST /auth/login y POST /auth/login/{provider}.
type LoginController struct {
	service svc.Service
}

func NewLoginController(service svc.Service) *LoginController {
	return &LoginController{service: service}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Login(ctx, req)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (c *LoginController) ProviderLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("LoginController.ProviderLogin"),
		logger.Provider(provider),
	)

	var req dto.ProviderLoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.ProviderLogin(ctx, provider, req)
	if err != nil {
		log.Debug("provider login failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}
