package repository

import "errors"

var (
	// ErrNotFound indica que el perfil solicitado no existe. No es reintentable.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica violación de unicidad (email o id ya existentes).
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indica que el store no respondió (caído, timeout).
	// El caller puede reintentar.
	ErrUnavailable = errors.New("store unavailable")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnavailable verifica si el error es ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
