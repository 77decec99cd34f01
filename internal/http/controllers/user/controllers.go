// Package user contiene los controllers de /user/*.
package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
	svc "github.com/dropDatabas3/authgate/internal/http/services/user"
	"github.com/dropDatabas3/authgate/internal/session"
)

// Controllers agrupa todos los controllers del dominio user.
type Controllers struct {
	Profile  *ProfileController
	Password *PasswordController
}

func NewControllers(s svc.Service) *Controllers {
	return &Controllers{
		Profile:  NewProfileController(s),
		Password: NewPasswordController(s),
	}
}

// selfID devuelve el {id} del path si coincide con el sujeto autenticado.
// Si no, escribe 401/403 y devuelve false.
func selfID(w http.ResponseWriter, r *http.Request) (string, bool) {
	subj, ok := session.SubjectFrom(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return "", false
	}
	id := chi.URLParam(r, "id")
	if id == "" || id != subj.UserID {
		httperrors.WriteError(w, httperrors.ErrForbidden)
		return "", false
	}
	return id, true
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrEmptyPatch):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("no hay campos para actualizar"))
	case errors.Is(err, svc.ErrInvalidAge):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("edad inválida"))
	case errors.Is(err, svc.ErrInvalidResetToken):
		httperrors.WriteError(w, httperrors.ErrInvalidResetToken)
	default:
		httperrors.WriteError(w, err)
	}
}
