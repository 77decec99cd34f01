package user

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/user"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// PasswordController maneja recover-password y reset-password.
type PasswordController struct {
	service svc.Service
}

func NewPasswordController(service svc.Service) *PasswordController {
	return &PasswordController{service: service}
}

// Recover responde 202 exista o no el email.
func (c *PasswordController) Recover(w http.ResponseWriter, r *http.Request) {
	var req dto.RecoverPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Recover(r.Context(), req); err != nil {
		if errors.Is(err, svc.ErrMissingFields) {
			writeUserError(w, err)
			return
		}
		logger.From(r.Context()).Error("recover failed", logger.Layer("controller"), logger.Err(err))
	}
	helpers.WriteJSON(w, http.StatusAccepted, dto.MessageResponse{
		Message: "Si el email está registrado, vas a recibir un link para restablecer la contraseña.",
	})
}

func (c *PasswordController) Reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Reset(r.Context(), req); err != nil {
		writeUserError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Message: "Contraseña actualizada."})
}
