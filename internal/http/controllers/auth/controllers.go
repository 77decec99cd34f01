// Package auth contiene los controllers de /auth/*.
package auth

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	svc "github.com/dropDatabas3/authgate/internal/http/services/auth"
)

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Register *RegisterController
	Login    *LoginController
	OAuth    *OAuthController
	Logout   *LogoutController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Service) *Controllers {
	return &Controllers{
		Register: NewRegisterController(s),
		Login:    NewLoginController(s),
		OAuth:    NewOAuthController(s),
		Logout:   NewLogoutController(s),
	}
}

// ─── Helpers ───

func writeAuthError(w http.ResponseWriter, err error) {
	var fe *svc.FieldsError
	switch {
	case errors.As(err, &fe):
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(strings.Join(fe.Fields, ",")))
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrInvalidEmail):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email inválido"))
	case errors.Is(err, svc.ErrInvalidAge):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("edad inválida"))
	case errors.Is(err, svc.ErrUnknownProvider):
		httperrors.WriteError(w, httperrors.ErrProviderNotFound)
	case errors.Is(err, svc.ErrInvalidState):
		httperrors.WriteError(w, httperrors.ErrInvalidState)
	default:
		httperrors.WriteError(w, err)
	}
}
