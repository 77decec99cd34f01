package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/types"
)

// Profile es el registro canónico de una persona. Uno por email normalizado.
type Profile struct {
	ID       string
	Email    string
	Provider types.Provider // provider que creó el perfil
	// ProviderSubject es el id externo de la cuenta que creó el perfil.
	// Vacío para password y para filas anteriores a la columna.
	ProviderSubject string
	// PasswordHash vacío para perfiles sólo-OAuth. Nunca se loguea ni se serializa.
	PasswordHash  string
	DisplayName   string
	FirstName     string
	LastName      string
	Age           *int
	AvatarURL     string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword indica si el perfil tiene credencial de password.
func (p *Profile) HasPassword() bool { return p != nil && p.PasswordHash != "" }

// Clone devuelve una copia profunda.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Age != nil {
		age := *p.Age
		cp.Age = &age
	}
	return &cp
}

// ProfilePatch contiene los campos a mergear. nil = no tocar.
// ID, Email, Provider y CreatedAt no son actualizables.
type ProfilePatch struct {
	DisplayName   *string
	FirstName     *string
	LastName      *string
	Age           *int
	AvatarURL     *string
	EmailVerified *bool
	PasswordHash  *string
	UpdatedAt     *time.Time
}

// IsEmpty retorna true si el patch no modifica nada.
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.FirstName == nil && p.LastName == nil && p.Age == nil &&
		p.AvatarURL == nil && p.EmailVerified == nil && p.PasswordHash == nil && p.UpdatedAt == nil
}

// Apply mergea el patch sobre una copia del perfil.
func (p ProfilePatch) Apply(dst *Profile) *Profile {
	out := dst.Clone()
	if p.DisplayName != nil {
		out.DisplayName = *p.DisplayName
	}
	if p.FirstName != nil {
		out.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		out.LastName = *p.LastName
	}
	if p.Age != nil {
		age := *p.Age
		out.Age = &age
	}
	if p.AvatarURL != nil {
		out.AvatarURL = *p.AvatarURL
	}
	if p.EmailVerified != nil {
		out.EmailVerified = *p.EmailVerified
	}
	if p.PasswordHash != nil {
		out.PasswordHash = *p.PasswordHash
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}

// ProfileRepository define operaciones sobre perfiles.
type ProfileRepository interface {
	// GetByID busca un perfil por id.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// FindByEmail busca por email normalizado. Retorna a lo sumo uno.
	// Retorna ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*Profile, error)

	// Create inserta un perfil nuevo.
	// Retorna ErrConflict si el id o el email ya existen.
	Create(ctx context.Context, p *Profile) error

	// Update mergea el patch y devuelve el perfil resultante.
	// Retorna ErrNotFound si no existe.
	Update(ctx context.Context, id string, patch ProfilePatch) (*Profile, error)

	// Delete elimina un perfil.
	// Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error

	// Ping verifica la conexión con el store.
	Ping(ctx context.Context) error
}
