// Package reconcile unifica identidades verificadas en un único perfil por
// email normalizado. Es el único lugar que crea o mergea perfiles a partir
// de un login.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	// ErrUnverifiedEmail: con el modo estricto, una identidad OAuth sin email
	// verificado no puede unirse a un perfil creado por otro provider.
	ErrUnverifiedEmail = errors.New("email not verified by provider")
	ErrMissingEmail    = errors.New("identity has no email")
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeMerged  Outcome = "merged"

	// OutcomeRecovered: el create chocó con otro concurrente y se mergeó sobre el ganador.
	OutcomeRecovered Outcome = "recovered"
)

type Options struct {
	RequireVerifiedEmailForMerge bool
	Now                          func() time.Time
	NewID                        func() string
}

type Result struct {
	Profile *repository.Profile
	Outcome Outcome
}

type Engine struct {
	profiles repository.ProfileRepository
	opts     Options
}

func NewEngine(profiles repository.ProfileRepository, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{profiles: profiles, opts: opts}
}

func (e *Engine) now() time.Time { return e.opts.Now().UTC() }

// Reconcile busca por email; si no existe crea, si existe mergea
// displayName/avatarUrl no vacíos. id, email, createdAt y provider nunca cambian.
func (e *Engine) Reconcile(ctx context.Context, in types.Identity) (Result, error) {
	id := in.Normalized()
	log := logger.From(ctx).With(logger.Layer("reconcile"), logger.Provider(id.Provider.String()), logger.Email(id.Email))
	if id.Email == "" {
		return Result{}, ErrMissingEmail
	}

	existing, err := e.profiles.FindByEmail(ctx, id.Email)
	switch {
	case err == nil:
		p, err := e.merge(ctx, existing, id)
		if err != nil {
			return Result{}, err
		}
		log.Debug("identity merged", logger.UserID(p.ID))
		return Result{Profile: p, Outcome: OutcomeMerged}, nil
	case !repository.IsNotFound(err):
		return Result{}, fmt.Errorf("reconcile: find by email: %w", err)
	}

	p := e.newProfile(id, e.idFor(id))
	err = e.profiles.Create(ctx, p)
	if err == nil {
		log.Info("profile created", logger.UserID(p.ID))
		return Result{Profile: p, Outcome: OutcomeCreated}, nil
	}
	if !repository.IsConflict(err) {
		return Result{}, fmt.Errorf("reconcile: create: %w", err)
	}

	// Otro request creó el perfil entre el find y el create.
	res, err := e.recover(ctx, id)
	if err == nil {
		log.Info("create conflict recovered", logger.UserID(res.Profile.ID))
		return res, nil
	}
	if !repository.IsNotFound(err) {
		return Result{}, err
	}

	// El conflicto fue por id (mismo subject con otro email): id local nuevo.
	p = e.newProfile(id, e.opts.NewID())
	if err := e.profiles.Create(ctx, p); err != nil {
		if repository.IsConflict(err) {
			if res, rerr := e.recover(ctx, id); rerr == nil {
				return res, nil
			}
		}
		return Result{}, fmt.Errorf("reconcile: create: %w", err)
	}
	log.Info("profile created with local id after id collision", logger.UserID(p.ID))
	return Result{Profile: p, Outcome: OutcomeCreated}, nil
}

func (e *Engine) recover(ctx context.Context, id types.Identity) (Result, error) {
	existing, err := e.profiles.FindByEmail(ctx, id.Email)
	if err != nil {
		return Result{}, err
	}
	p, err := e.merge(ctx, existing, id)
	if err != nil {
		return Result{}, err
	}
	return Result{Profile: p, Outcome: OutcomeRecovered}, nil
}

// idFor: Google garantiza sub único y estable; el resto recibe un id local.
func (e *Engine) idFor(id types.Identity) string {
	if id.Provider == types.ProviderGoogle && id.ExternalID != "" {
		return id.ExternalID
	}
	return e.opts.NewID()
}

func (e *Engine) newProfile(id types.Identity, profileID string) *repository.Profile {
	now := e.now()
	return &repository.Profile{
		ID:              profileID,
		Email:           id.Email,
		Provider:        id.Provider,
		ProviderSubject: id.ExternalID,
		DisplayName:     id.DisplayName,
		AvatarURL:       id.AvatarURL,
		EmailVerified:   id.EmailVerified,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// sameAccount: la identidad es la misma cuenta que creó el perfil. Sin
// subject guardado (filas viejas) alcanza con el provider.
func sameAccount(p *repository.Profile, id types.Identity) bool {
	if p.Provider != id.Provider {
		return false
	}
	return p.ProviderSubject == "" || p.ProviderSubject == id.ExternalID
}

func (e *Engine) merge(ctx context.Context, existing *repository.Profile, id types.Identity) (*repository.Profile, error) {
	if e.opts.RequireVerifiedEmailForMerge && id.Provider.IsOAuth() &&
		!id.EmailVerified && !sameAccount(existing, id) {
		logger.From(ctx).Warn("unverified email merge refused",
			logger.Layer("reconcile"), logger.Provider(id.Provider.String()), logger.UserID(existing.ID))
		return nil, ErrUnverifiedEmail
	}

	now := e.now()
	patch := repository.ProfilePatch{UpdatedAt: &now}
	if id.DisplayName != "" {
		patch.DisplayName = &id.DisplayName
	}
	if id.AvatarURL != "" {
		patch.AvatarURL = &id.AvatarURL
	}
	if id.EmailVerified && !existing.EmailVerified {
		verified := true
		patch.EmailVerified = &verified
	}

	p, err := e.profiles.Update(ctx, existing.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("reconcile: update: %w", err)
	}
	return p, nil
}

// Enrollment es el alta por password: sólo crea, nunca mergea.
type Enrollment struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	DisplayName  string
	Age          *int
}

// Enroll crea un perfil password. Un email existente (o un create que choca)
// devuelve ErrEmailTaken.
func (e *Engine) Enroll(ctx context.Context, en Enrollment) (*repository.Profile, error) {
	email := types.NormalizeEmail(en.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}

	_, err := e.profiles.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !repository.IsNotFound(err):
		return nil, fmt.Errorf("enroll: find by email: %w", err)
	}

	display := strings.TrimSpace(en.DisplayName)
	if display == "" {
		display = strings.TrimSpace(strings.TrimSpace(en.FirstName) + " " + strings.TrimSpace(en.LastName))
	}
	p := e.newProfile(types.Identity{
		Provider:    types.ProviderPassword,
		Email:       email,
		DisplayName: display,
	}, e.opts.NewID())
	p.PasswordHash = en.PasswordHash
	p.FirstName = strings.TrimSpace(en.FirstName)
	p.LastName = strings.TrimSpace(en.LastName)
	if en.Age != nil {
		age := *en.Age
		p.Age = &age
	}

	if err := e.profiles.Create(ctx, p); err != nil {
		if repository.IsConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("enroll: create: %w", err)
	}
	logger.From(ctx).Info("profile enrolled", logger.Layer("reconcile"), logger.UserID(p.ID), logger.Provider("password"))
	return p, nil
}
