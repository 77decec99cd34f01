package providers

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	pwd "github.com/dropDatabas3/authgate/internal/security/password"
)

// Password verifica email+password contra el hash guardado en el perfil.
type Password struct {
	profiles repository.ProfileRepository
	hasher   *pwd.Hasher
}

func NewPassword(profiles repository.ProfileRepository, hasher *pwd.Hasher) *Password {
	return &Password{profiles: profiles, hasher: hasher}
}

func (p *Password) Kind() types.Provider { return types.ProviderPassword }

// Verify devuelve ErrInvalidCredentials igual para email inexistente y
// password incorrecta, con el mismo costo de bcrypt en ambos casos.
func (p *Password) Verify(ctx context.Context, proof Proof) (types.Identity, error) {
	email := types.NormalizeEmail(proof.Email)
	if email == "" || proof.Password == "" {
		return types.Identity{}, ErrMissingProof
	}

	prof, err := p.profiles.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			p.hasher.Verify("", proof.Password)
			return types.Identity{}, ErrInvalidCredentials
		}
		return types.Identity{}, fmt.Errorf("password verify: %w", err)
	}
	if !prof.HasPassword() {
		p.hasher.Verify("", proof.Password)
		return types.Identity{}, ErrInvalidCredentials
	}
	if !p.hasher.Verify(prof.PasswordHash, proof.Password) {
		return types.Identity{}, ErrInvalidCredentials
	}

	return types.Identity{
		Provider:      types.ProviderPassword,
		Email:         prof.Email,
		DisplayName:   prof.DisplayName,
		AvatarURL:     prof.AvatarURL,
		EmailVerified: prof.EmailVerified,
	}, nil
}

// Registrar aplica la política y hashea. No toca el store.
type Registrar struct {
	policy pwd.Policy
	hasher *pwd.Hasher
}

func NewRegistrar(policy pwd.Policy, hasher *pwd.Hasher) *Registrar {
	return &Registrar{policy: policy, hasher: hasher}
}

// HashNew valida la fortaleza y devuelve el hash. Falla con pwd.ErrWeakPassword.
func (r *Registrar) HashNew(plain string) (string, error) {
	if err := r.policy.Check(plain); err != nil {
		return "", err
	}
	return r.hasher.Hash(plain)
}
