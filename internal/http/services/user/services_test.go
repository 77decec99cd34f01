package user

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/email"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/providers"
	pwd "github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/store/memory"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	svc    Service
	store  *memory.Profiles
	mailer *captureMailer
	hasher *pwd.Hasher
	cache  cache.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewProfiles()
	hasher := pwd.NewHasher(4)
	mailer := &captureMailer{}
	c := cache.NewMemory("test", time.Minute)
	svc := New(Deps{
		Profiles:  store,
		Registrar: providers.NewRegistrar(pwd.DefaultPolicy(), hasher),
		Cache:     c,
		Mailer:    mailer,
		ResetTTL:  time.Minute,
		ResetURL:  "http://front.example/reset-password",
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	return &fixture{svc: svc, store: store, mailer: mailer, hasher: hasher, cache: c}
}

func seed(t *testing.T, f *fixture, id, addr, plain string) {
	t.Helper()
	p := &repository.Profile{
		ID:          id,
		Email:       addr,
		Provider:    types.ProviderPassword,
		DisplayName: "Ana Pérez",
		FirstName:   "Ana",
		LastName:    "Pérez",
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if plain != "" {
		h, err := f.hasher.Hash(plain)
		require.NoError(t, err)
		p.PasswordHash = h
	}
	require.NoError(t, f.store.Create(context.Background(), p))
}

func tokenFromMail(t *testing.T, m email.Message) string {
	t.Helper()
	for _, line := range strings.Split(m.Text, "\n") {
		if strings.HasPrefix(line, "http") {
			u, err := url.Parse(strings.TrimSpace(line))
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatal("no link in mail")
	return ""
}

func TestGetUpdateDelete(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "u1", "ana@example.com", "Old!Passw0rd")
	ctx := context.Background()

	p, err := f.svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", p.Email)

	name := "  Anita  "
	age := 31
	p, err = f.svc.Update(ctx, "u1", dto.UpdateProfileRequest{DisplayName: &name, Age: &age})
	require.NoError(t, err)
	require.Equal(t, "Anita", p.DisplayName)
	require.Equal(t, 31, *p.Age)
	require.Equal(t, "Ana", p.FirstName)
	require.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), p.UpdatedAt)

	_, err = f.svc.Update(ctx, "u1", dto.UpdateProfileRequest{})
	require.ErrorIs(t, err, ErrEmptyPatch)
	bad := 200
	_, err = f.svc.Update(ctx, "u1", dto.UpdateProfileRequest{Age: &bad})
	require.ErrorIs(t, err, ErrInvalidAge)
	_, err = f.svc.Update(ctx, "nope", dto.UpdateProfileRequest{DisplayName: &name})
	require.True(t, repository.IsNotFound(err))

	require.NoError(t, f.svc.Delete(ctx, "u1"))
	require.True(t, repository.IsNotFound(f.svc.Delete(ctx, "u1")))
	_, err = f.svc.Get(ctx, "u1")
	require.True(t, repository.IsNotFound(err))
}

func TestRecoverAndReset(t *testing.T) {
	f := newFixture(t)
	seed(t, f, "u1", "ana@example.com", "Old!Passw0rd")
	ctx := context.Background()

	require.NoError(t, f.svc.Recover(ctx, dto.RecoverPasswordRequest{Email: " ANA@example.com"}))
	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	require.Equal(t, "ana@example.com", msg.To)
	tok := tokenFromMail(t, msg)
	require.NotEmpty(t, tok)

	// password débil: 422 y el token sigue vivo
	err := f.svc.Reset(ctx, dto.ResetPasswordRequest{Token: tok, NewPassword: "weak"})
	require.ErrorIs(t, err, pwd.ErrWeakPassword)

	require.NoError(t, f.svc.Reset(ctx, dto.ResetPasswordRequest{Token: tok, NewPassword: "N3w!Password"}))
	p, err := f.store.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, f.hasher.Verify(p.PasswordHash, "N3w!Password"))
	require.False(t, f.hasher.Verify(p.PasswordHash, "Old!Passw0rd"))

	// un solo uso
	err = f.svc.Reset(ctx, dto.ResetPasswordRequest{Token: tok, NewPassword: "Other!Passw0rd"})
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestRecover_DoesNotRevealAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Recover(ctx, dto.RecoverPasswordRequest{Email: "nadie@example.com"}))
	require.Empty(t, f.mailer.sent)

	seed(t, f, "u1", "ana@example.com", "")
	f.mailer.err = errors.New("smtp down")
	require.NoError(t, f.svc.Recover(ctx, dto.RecoverPasswordRequest{Email: "ana@example.com"}))

	require.ErrorIs(t, f.svc.Recover(ctx, dto.RecoverPasswordRequest{}), ErrMissingFields)
}

func TestReset_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.Reset(ctx, dto.ResetPasswordRequest{NewPassword: "N3w!Password"}), ErrMissingFields)
	require.ErrorIs(t, f.svc.Reset(ctx, dto.ResetPasswordRequest{Token: "unknown", NewPassword: "N3w!Password"}), ErrInvalidResetToken)

	// token válido pero el perfil ya no existe
	require.NoError(t, f.cache.Set(ctx, resetKey("orphan"), "gone", time.Minute))
	require.ErrorIs(t, f.svc.Reset(ctx, dto.ResetPasswordRequest{Token: "orphan", NewPassword: "N3w!Password"}), ErrInvalidResetToken)
}

func TestResetLink(t *testing.T) {
	require.Equal(t, "http://f/reset?token=a%2Bb", resetLink("http://f/reset", "a+b"))
	require.Equal(t, "http://f/reset?x=1&token=t", resetLink("http://f/reset?x=1", "t"))
}
