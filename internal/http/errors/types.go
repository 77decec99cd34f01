package errors

import (
	"fmt"
	"net/http"
)

// AppError es la forma estándar de los errores HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, sólo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail devuelve una COPIA con el detalle.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// ---- 400 ----

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos requeridos en la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnsupportedMediaType = &AppError{
		Code:       "UNSUPPORTED_MEDIA_TYPE",
		Message:    "Content-Type debe ser application/json.",
		HTTPStatus: http.StatusUnsupportedMediaType,
	}

	ErrInvalidResetToken = &AppError{
		Code:       "INVALID_RESET_TOKEN",
		Message:    "El token de recuperación es inválido o expiró.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidState = &AppError{
		Code:       "INVALID_STATE",
		Message:    "El parámetro state es inválido o expiró.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---- 401 / 403 ----

var (
	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Email o contraseña incorrectos.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrUnauthenticated = &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    "Se requiere un token de sesión válido.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrProviderRejected = &AppError{
		Code:       "PROVIDER_REJECTED",
		Message:    "El proveedor de identidad rechazó las credenciales.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tenés permiso para acceder a este recurso.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrEmailNotVerified = &AppError{
		Code:       "EMAIL_NOT_VERIFIED",
		Message:    "El proveedor no verificó el email; no se puede vincular la cuenta.",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---- 404 / 409 / 422 / 429 ----

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrProviderNotFound = &AppError{
		Code:       "PROVIDER_NOT_FOUND",
		Message:    "El proveedor no existe o no está configurado.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrEmailTaken = &AppError{
		Code:       "EMAIL_TAKEN",
		Message:    "Ya existe una cuenta con ese email.",
		HTTPStatus: http.StatusConflict,
	}

	ErrWeakPassword = &AppError{
		Code:       "WEAK_PASSWORD",
		Message:    "La contraseña no cumple la política de seguridad.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrIncompleteProfile = &AppError{
		Code:       "INCOMPLETE_PROFILE",
		Message:    "El proveedor no devolvió los datos mínimos del perfil.",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Demasiadas solicitudes. Intentá más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método no permitido para esta ruta.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)

// ---- 5xx ----

var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error inesperado.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrProviderUnavailable = &AppError{
		Code:       "PROVIDER_UNAVAILABLE",
		Message:    "El proveedor de identidad no está disponible.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "El almacenamiento no está disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
