// Package oauth agrupa lo común a los clientes de google, github y facebook:
// credenciales inmutables, clasificación de errores y el http.Client que
// x/oauth2 toma del contexto.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Credentials se pasan por valor al construir cada cliente.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Configured indica si hay client id.
func (c Credentials) Configured() bool { return c.ClientID != "" }

var (
	// ErrRejected: el IdP respondió y dijo que no (code inválido, token vencido, firma mala).
	ErrRejected = errors.New("oauth: rejected by identity provider")
	// ErrUnavailable: no hubo respuesta usable (red, 5xx, body ilegible).
	ErrUnavailable = errors.New("oauth: identity provider unavailable")
	// ErrNoEmail: el IdP no entregó email.
	ErrNoEmail = errors.New("oauth: no email returned")
)

const defaultTimeout = 10 * time.Second

// NewHTTPClient devuelve un cliente con timeout si c es nil.
func NewHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

// WithClient hace que x/oauth2 use hc para el token endpoint.
func WithClient(ctx context.Context, hc *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, hc)
}

// ClassifyExchange traduce el error de oauth2.Config.Exchange.
func ClassifyExchange(err error) error {
	if err == nil {
		return nil
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			return fmt.Errorf("%w: %s %s", ErrRejected, re.ErrorCode, re.ErrorDescription)
		}
		if re.Response != nil {
			return ClassifyStatus(re.Response.StatusCode)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// ClassifyStatus mapea un status HTTP no-2xx de una API del IdP.
func ClassifyStatus(code int) error {
	switch {
	case code >= 500 || code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: http %d", ErrUnavailable, code)
	case code >= 400:
		return fmt.Errorf("%w: http %d", ErrRejected, code)
	default:
		return fmt.Errorf("%w: unexpected http %d", ErrUnavailable, code)
	}
}
