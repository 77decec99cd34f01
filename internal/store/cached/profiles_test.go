package cached

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/store/memory"
)

type countingRepo struct {
	repository.ProfileRepository
	gets int
}

func (c *countingRepo) GetByID(ctx context.Context, id string) (*repository.Profile, error) {
	c.gets++
	return c.ProfileRepository.GetByID(ctx, id)
}

func TestProfiles_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	base := &countingRepo{ProfileRepository: memory.NewProfiles()}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, base.Create(ctx, &repository.Profile{
		ID: "u1", Email: "a@x.com", Provider: types.ProviderGitHub, DisplayName: "A",
		CreatedAt: now, UpdatedAt: now,
	}))

	r := NewProfiles(base, cache.NewMemory("t", time.Minute), time.Minute, nil)

	p, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "A", p.DisplayName)
	p, err = r.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.ProviderGitHub, p.Provider)
	require.True(t, p.CreatedAt.Equal(now))
	require.Equal(t, 1, base.gets)

	name := "B"
	_, err = r.Update(ctx, "u1", repository.ProfilePatch{DisplayName: &name})
	require.NoError(t, err)
	p, err = r.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "B", p.DisplayName)
	require.Equal(t, 2, base.gets)

	require.NoError(t, r.Delete(ctx, "u1"))
	_, err = r.GetByID(ctx, "u1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfiles_HashNeverCached(t *testing.T) {
	ctx := context.Background()
	base := memory.NewProfiles()
	require.NoError(t, base.Create(ctx, &repository.Profile{
		ID: "u1", Email: "a@x.com", Provider: types.ProviderPassword, PasswordHash: "$2a$04$hash",
	}))
	c := cache.NewMemory("t", time.Minute)
	r := NewProfiles(base, c, time.Minute, nil)

	p, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, p.PasswordHash)

	raw, err := c.Get(ctx, key("u1"))
	require.NoError(t, err)
	require.NotContains(t, raw, "hash")

	// el store sigue teniendo el hash para el login
	p, err = r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "$2a$04$hash", p.PasswordHash)
}
