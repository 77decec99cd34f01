// Package cached decora un ProfileRepository con un read-through de GetByID
// sobre internal/cache. Las escrituras invalidan la entrada.
//
// El hash de password no entra al cache: GetByID devuelve siempre
// PasswordHash vacío. El login usa FindByEmail, que va directo al store.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
)

// Profiles envuelve otro repositorio. Errores del cache nunca fallan la operación.
type Profiles struct {
	next repository.ProfileRepository
	c    cache.Client
	ttl  time.Duration
	log  *zap.Logger
}

var _ repository.ProfileRepository = (*Profiles)(nil)

func NewProfiles(next repository.ProfileRepository, c cache.Client, ttl time.Duration, log *zap.Logger) *Profiles {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Profiles{next: next, c: c, ttl: ttl, log: log}
}

type entry struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Provider      string    `json:"provider"`
	Subject       string    `json:"subject,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	Age           *int      `json:"age,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func key(id string) string { return "profile:" + id }

func (r *Profiles) GetByID(ctx context.Context, id string) (*repository.Profile, error) {
	if raw, err := r.c.Get(ctx, key(id)); err == nil {
		var e entry
		if jerr := json.Unmarshal([]byte(raw), &e); jerr == nil {
			return e.profile(), nil
		}
		_ = r.c.Delete(ctx, key(id))
	} else if !cache.IsNotFound(err) {
		r.log.Warn("profile cache get failed", zap.String("profile_id", id), zap.Error(err))
	}

	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := p.Clone()
	out.PasswordHash = ""
	r.store(ctx, out)
	return out, nil
}

func (r *Profiles) FindByEmail(ctx context.Context, email string) (*repository.Profile, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *Profiles) Create(ctx context.Context, p *repository.Profile) error {
	return r.next.Create(ctx, p)
}

func (r *Profiles) Update(ctx context.Context, id string, patch repository.ProfilePatch) (*repository.Profile, error) {
	r.invalidate(ctx, id)
	p, err := r.next.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return p, nil
}

func (r *Profiles) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *Profiles) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *Profiles) store(ctx context.Context, p *repository.Profile) {
	b, err := json.Marshal(fromProfile(p))
	if err != nil {
		return
	}
	if err := r.c.Set(ctx, key(p.ID), string(b), r.ttl); err != nil {
		r.log.Warn("profile cache set failed", zap.String("profile_id", p.ID), zap.Error(err))
	}
}

func (r *Profiles) invalidate(ctx context.Context, id string) {
	if err := r.c.Delete(ctx, key(id)); err != nil {
		r.log.Warn("profile cache invalidate failed", zap.String("profile_id", id), zap.Error(err))
	}
}

func fromProfile(p *repository.Profile) entry {
	return entry{
		ID: p.ID, Email: p.Email, Provider: string(p.Provider), Subject: p.ProviderSubject,
		DisplayName: p.DisplayName, FirstName: p.FirstName, LastName: p.LastName, Age: p.Age,
		AvatarURL: p.AvatarURL, EmailVerified: p.EmailVerified,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (e entry) profile() *repository.Profile {
	return &repository.Profile{
		ID: e.ID, Email: e.Email, Provider: types.Provider(e.Provider), ProviderSubject: e.Subject,
		DisplayName: e.DisplayName, FirstName: e.FirstName, LastName: e.LastName, Age: e.Age,
		AvatarURL: e.AvatarURL, EmailVerified: e.EmailVerified,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}
