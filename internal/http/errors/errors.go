// Package errors traduce errores de dominio a respuestas JSON
// {"code","message","detail"} con el status correspondiente.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/reconcile"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError convierte cualquier error en *AppError. Lo que no se reconoce es 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var weak *password.WeakPasswordError
	switch {
	case stderrors.As(err, &weak):
		return ErrWeakPassword.WithDetail(strings.Join(weak.Reasons, ",")).WithCause(err)
	case stderrors.Is(err, password.ErrWeakPassword):
		return ErrWeakPassword.WithCause(err)
	case stderrors.Is(err, providers.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case stderrors.Is(err, session.ErrUnauthenticated):
		return ErrUnauthenticated
	case stderrors.Is(err, reconcile.ErrEmailTaken):
		return ErrEmailTaken
	case stderrors.Is(err, reconcile.ErrUnverifiedEmail):
		return ErrEmailNotVerified.WithCause(err)
	case stderrors.Is(err, providers.ErrProviderRejected):
		return ErrProviderRejected.WithCause(err)
	case stderrors.Is(err, providers.ErrProviderUnavailable):
		return ErrProviderUnavailable.WithCause(err)
	case stderrors.Is(err, providers.ErrIncompleteProfile), stderrors.Is(err, reconcile.ErrMissingEmail):
		return ErrIncompleteProfile.WithCause(err)
	case stderrors.Is(err, providers.ErrProviderNotConfigured):
		return ErrProviderNotFound.WithCause(err)
	case stderrors.Is(err, providers.ErrMissingProof):
		return ErrMissingFields.WithCause(err)
	case stderrors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, repository.ErrUnavailable):
		return ErrStoreUnavailable.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta. Los 5xx se loguean con la causa; el
// cliente nunca la ve.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	if appErr.HTTPStatus >= 500 && appErr.Err != nil {
		logger.L().Error("request failed", logger.String("code", appErr.Code), logger.Err(appErr.Err))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
