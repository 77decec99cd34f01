package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// RegisterController maneja POST /auth/register.
type RegisterController struct {
	service svc.Service
}

func NewRegisterController(service svc.Service) *RegisterController {
	return &RegisterController{service: service}
}

func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Register(ctx, req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, res)
}
