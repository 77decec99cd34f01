package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
)

func TestProfiles_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewProfiles()
	now := time.Now().UTC()

	p := &repository.Profile{ID: "u1", Email: "A@X.com", Provider: types.ProviderPassword, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Create(ctx, p))

	got, err := s.FindByEmail(ctx, " a@x.COM ")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)
	require.Equal(t, "a@x.com", got.Email)

	// la copia devuelta no comparte estado
	got.DisplayName = "mutated"
	again, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, again.DisplayName)

	name := "Ana"
	updated, err := s.Update(ctx, "u1", repository.ProfilePatch{DisplayName: &name})
	require.NoError(t, err)
	require.Equal(t, "Ana", updated.DisplayName)
	require.Equal(t, types.ProviderPassword, updated.Provider)
	require.Equal(t, now, updated.CreatedAt)

	require.NoError(t, s.Delete(ctx, "u1"))
	_, err = s.GetByID(ctx, "u1")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfiles_Conflicts(t *testing.T) {
	ctx := context.Background()
	s := NewProfiles()
	require.NoError(t, s.Create(ctx, &repository.Profile{ID: "u1", Email: "a@x.com"}))

	err := s.Create(ctx, &repository.Profile{ID: "u2", Email: "A@x.com"})
	require.ErrorIs(t, err, repository.ErrConflict)

	err = s.Create(ctx, &repository.Profile{ID: "u1", Email: "b@x.com"})
	require.ErrorIs(t, err, repository.ErrConflict)
	require.Equal(t, 1, s.Len())
}

func TestProfiles_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewProfiles()
	_, err := s.Update(ctx, "missing", repository.ProfilePatch{})
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "missing"), repository.ErrNotFound)
}
