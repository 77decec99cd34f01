package providers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	pwd "github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/store/memory"
)

type downRepo struct{ repository.ProfileRepository }

func (downRepo) FindByEmail(context.Context, string) (*repository.Profile, error) {
	return nil, repository.ErrUnavailable
}

func seedPassword(t *testing.T, profiles repository.ProfileRepository, h *pwd.Hasher, email, plain string) {
	t.Helper()
	hash, err := h.Hash(plain)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, profiles.Create(context.Background(), &repository.Profile{
		ID: "u1", Email: email, Provider: types.ProviderPassword, PasswordHash: hash,
		DisplayName: "Ana", CreatedAt: now, UpdatedAt: now,
	}))
}

func TestPassword_Verify(t *testing.T) {
	ctx := context.Background()
	h := pwd.NewHasher(4)
	profiles := memory.NewProfiles()
	seedPassword(t, profiles, h, "a@x.com", "Abcdef1!")
	require.NoError(t, profiles.Create(ctx, &repository.Profile{ID: "g1", Email: "oauth@x.com", Provider: types.ProviderGoogle}))

	p := NewPassword(profiles, h)
	require.Equal(t, types.ProviderPassword, p.Kind())

	id, err := p.Verify(ctx, Proof{Email: "  A@X.com ", Password: "Abcdef1!"})
	require.NoError(t, err)
	require.Equal(t, "a@x.com", id.Email)
	require.Equal(t, "Ana", id.DisplayName)
	require.Empty(t, id.ExternalID)
	require.False(t, id.EmailVerified)

	_, wrong := p.Verify(ctx, Proof{Email: "a@x.com", Password: "nope"})
	_, unknown := p.Verify(ctx, Proof{Email: "ghost@x.com", Password: "nope"})
	_, noHash := p.Verify(ctx, Proof{Email: "oauth@x.com", Password: "nope"})
	require.ErrorIs(t, wrong, ErrInvalidCredentials)
	require.Equal(t, wrong, unknown)
	require.Equal(t, wrong, noHash)

	_, err = p.Verify(ctx, Proof{Email: "a@x.com"})
	require.ErrorIs(t, err, ErrMissingProof)
}

func TestPassword_StoreDown(t *testing.T) {
	p := NewPassword(downRepo{}, pwd.NewHasher(4))
	_, err := p.Verify(context.Background(), Proof{Email: "a@x.com", Password: "x"})
	require.ErrorIs(t, err, repository.ErrUnavailable)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegistrar_HashNew(t *testing.T) {
	h := pwd.NewHasher(4)
	r := NewRegistrar(pwd.DefaultPolicy(), h)

	_, err := r.HashNew("abc")
	require.ErrorIs(t, err, pwd.ErrWeakPassword)

	// más de 72 bytes: bcrypt no lo acepta, se rechaza como password débil
	_, err = r.HashNew("Abcdef1!" + strings.Repeat("x", 80))
	require.ErrorIs(t, err, pwd.ErrWeakPassword)

	hash, err := r.HashNew("Abcdef1!")
	require.NoError(t, err)
	require.True(t, h.Verify(hash, "Abcdef1!"))
}
