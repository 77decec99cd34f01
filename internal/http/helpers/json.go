package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/authgate/internal/http/errors"
)

const maxBodyBytes = 1 << 20

// ReadJSON decodifica el body (máx 1MB, tolera campos desconocidos).
// Si falla escribe el error y devuelve false.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrUnsupportedMediaType)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithCause(err))
		return false
	}
	return true
}

// WriteJSON escribe una respuesta JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[7:])
}
