// Package auth contiene la lógica de los endpoints /auth/*: alta, login
// (password y providers), flujo OAuth de navegador y logout.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/reconcile"
	"github.com/dropDatabas3/authgate/internal/session"
)

var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidAge      = errors.New("invalid age")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrInvalidState    = errors.New("invalid or expired oauth state")
)

// FieldsError lista los campos obligatorios ausentes.
type FieldsError struct {
	Fields []string
}

func (e *FieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *FieldsError) Is(target error) bool { return target == ErrMissingFields }

const DefaultStateTTL = 10 * time.Minute

// Enroller crea perfiles password (reconcile.Engine).
type Enroller interface {
	Enroll(ctx context.Context, en reconcile.Enrollment) (*repository.Profile, error)
}

// Service define las operaciones de /auth/*.
type Service interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	ProviderLogin(ctx context.Context, provider string, in dto.ProviderLoginRequest) (*dto.LoginResponse, error)

	// BeginOAuth devuelve la URL de consentimiento del provider.
	BeginOAuth(ctx context.Context, provider string) (string, error)
	// Callback siempre devuelve una URL del frontend (éxito o error). El
	// error sólo sirve para loguear.
	Callback(ctx context.Context, provider string, in CallbackInput) (string, error)

	Logout(ctx context.Context, subj session.Subject) dto.MessageResponse
}

type CallbackInput struct {
	State string
	Code  string
	// Error viene seteado cuando el usuario cancela en el provider.
	Error string
}

type Deps struct {
	Providers *providers.Registry
	Registrar *providers.Registrar
	Enroller  Enroller
	Issuer    *session.Issuer
	// Cache guarda el state OAuth de un solo uso.
	Cache       cache.Client
	StateTTL    time.Duration
	FrontendURL string
}

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	if deps.StateTTL <= 0 {
		deps.StateTTL = DefaultStateTTL
	}
	deps.FrontendURL = strings.TrimRight(deps.FrontendURL, "/")
	return &service{deps: deps}
}

func parseProvider(s string) (types.Provider, error) {
	p, ok := types.ParseProvider(s)
	if !ok {
		return "", ErrUnknownProvider
	}
	return p, nil
}

func loginResponse(s *session.Session) *dto.LoginResponse {
	return &dto.LoginResponse{
		Token:     s.Token,
		UID:       s.Profile.ID,
		ExpiresAt: s.ExpiresAt,
		Profile:   dto.ProfileFrom(s.Profile),
	}
}
