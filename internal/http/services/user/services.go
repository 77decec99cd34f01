// Package user contiene la lógica de /user/*: perfil propio y recuperación
// de password.
package user

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/email"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/validation"
)

var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrEmptyPatch        = errors.New("nothing to update")
	ErrInvalidAge        = errors.New("invalid age")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

const DefaultResetTTL = time.Hour

type Service interface {
	Get(ctx context.Context, id string) (*dto.Profile, error)
	Update(ctx context.Context, id string, in dto.UpdateProfileRequest) (*dto.Profile, error)
	Delete(ctx context.Context, id string) error

	// Recover nunca revela si el email existe: sólo falla si no hay email.
	Recover(ctx context.Context, in dto.RecoverPasswordRequest) error
	Reset(ctx context.Context, in dto.ResetPasswordRequest) error
}

type Deps struct {
	Profiles  repository.ProfileRepository
	Registrar *providers.Registrar
	// Cache guarda sha256(token) -> user id.
	Cache    cache.Client
	Mailer   email.Sender
	ResetTTL time.Duration
	// ResetURL es la página del frontend que recibe ?token=.
	ResetURL string
	Now      func() time.Time
}

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = DefaultResetTTL
	}
	if deps.Mailer == nil {
		deps.Mailer = email.LogSender{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

func (s *service) Get(ctx context.Context, id string) (*dto.Profile, error) {
	p, err := s.deps.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ProfileFrom(p)
	return &out, nil
}

func (s *service) Update(ctx context.Context, id string, in dto.UpdateProfileRequest) (*dto.Profile, error) {
	if !validation.ValidAge(in.Age) {
		return nil, ErrInvalidAge
	}
	patch := repository.ProfilePatch{
		FirstName:   trimmed(in.FirstName),
		LastName:    trimmed(in.LastName),
		Age:         in.Age,
		DisplayName: trimmed(in.DisplayName),
		AvatarURL:   trimmed(in.AvatarURL),
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	now := s.deps.Now().UTC()
	patch.UpdatedAt = &now

	p, err := s.deps.Profiles.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventProfileUpdated, logger.UserID(id))
	out := dto.ProfileFrom(p)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.deps.Profiles.Delete(ctx, id); err != nil {
		return err
	}
	audit.Log(ctx, audit.EventProfileDeleted, logger.UserID(id))
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func resetLink(base, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
