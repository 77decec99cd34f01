// Package providers define el contrato común de los proveedores de identidad
// y sus variantes (password, google, github, facebook). Cada adapter recibe
// la prueba que trae el cliente y devuelve una types.Identity verificada.
package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/oauth"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrProviderRejected      = errors.New("provider rejected the credentials")
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrIncompleteProfile     = errors.New("provider profile is incomplete")
	ErrProviderNotConfigured = errors.New("provider not configured")
	ErrMissingProof          = errors.New("missing credentials for provider")
)

// Proof es la prueba que aporta el cliente. Cada variante usa sus campos.
type Proof struct {
	Email    string
	Password string

	Code        string
	IDToken     string
	AccessToken string
	Nonce       string
}

// Adapter verifica una prueba contra un proveedor.
type Adapter interface {
	Kind() types.Provider
	Verify(ctx context.Context, proof Proof) (types.Identity, error)
}

// Redirector lo implementan los providers con flujo de navegador.
type Redirector interface {
	AuthURL(ctx context.Context, state, nonce string) (string, error)
}

// Registry despacha por types.Provider.
type Registry struct {
	adapters map[types.Provider]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[types.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		if a != nil {
			r.adapters[a.Kind()] = a
		}
	}
	return r
}

func (r *Registry) Get(p types.Provider) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p)
	}
	return a, nil
}

func (r *Registry) Redirector(p types.Provider) (Redirector, error) {
	a, err := r.Get(p)
	if err != nil {
		return nil, err
	}
	rd, ok := a.(Redirector)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no browser flow", ErrProviderNotConfigured, p)
	}
	return rd, nil
}

// Enabled lista los providers registrados, ordenados.
func (r *Registry) Enabled() []types.Provider {
	out := make([]types.Provider, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// mapOAuthErr traduce errores de internal/oauth a la taxonomía de providers.
func mapOAuthErr(p types.Provider, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, oauth.ErrNoEmail):
		return fmt.Errorf("%s: %w", p, ErrIncompleteProfile)
	case errors.Is(err, oauth.ErrRejected):
		return fmt.Errorf("%s: %w: %v", p, ErrProviderRejected, err)
	default:
		return fmt.Errorf("%s: %w: %v", p, ErrProviderUnavailable, err)
	}
}
