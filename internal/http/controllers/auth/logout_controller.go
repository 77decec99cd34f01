package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/auth"
	"github.com/dropDatabas3/authgate/internal/session"
)

// LogoutController maneja POST /auth/logout (ruta protegida).
type LogoutController struct {
	service svc.Service
}

func NewLogoutController(service svc.Service) *LogoutController {
	return &LogoutController{service: service}
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	subj, ok := session.SubjectFrom(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, c.service.Logout(r.Context(), subj))
}
