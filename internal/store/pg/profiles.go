package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
)

const profileColumns = `id, email, provider, provider_subject, COALESCE(password_hash, ''), display_name,
	first_name, last_name, age, avatar_url, email_verified, created_at, updated_at`

// Profiles implementa repository.ProfileRepository.
type Profiles struct {
	pool *pgxpool.Pool
}

var _ repository.ProfileRepository = (*Profiles)(nil)

func NewProfiles(pool *pgxpool.Pool) *Profiles {
	return &Profiles{pool: pool}
}

func (r *Profiles) GetByID(ctx context.Context, id string) (*repository.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapErr("get profile by id", err)
	}
	return p, nil
}

func (r *Profiles) FindByEmail(ctx context.Context, email string) (*repository.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1 LIMIT 1`,
		types.NormalizeEmail(email))
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapErr("find profile by email", err)
	}
	return p, nil
}

func (r *Profiles) Create(ctx context.Context, p *repository.Profile) error {
	const q = `
		INSERT INTO profiles (id, email, provider, provider_subject, password_hash, display_name,
		                      first_name, last_name, age, avatar_url, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, q,
		p.ID, types.NormalizeEmail(p.Email), string(p.Provider), p.ProviderSubject, nullIfEmpty(p.PasswordHash),
		p.DisplayName, p.FirstName, p.LastName, p.Age, p.AvatarURL, p.EmailVerified,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapErr("insert profile", err)
	}
	return nil
}

func (r *Profiles) Update(ctx context.Context, id string, patch repository.ProfilePatch) (*repository.Profile, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	setClauses := []string{}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.DisplayName != nil {
		add("display_name", *patch.DisplayName)
	}
	if patch.FirstName != nil {
		add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		add("last_name", *patch.LastName)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.AvatarURL != nil {
		add("avatar_url", *patch.AvatarURL)
	}
	if patch.EmailVerified != nil {
		add("email_verified", *patch.EmailVerified)
	}
	if patch.PasswordHash != nil {
		add("password_hash", nullIfEmpty(*patch.PasswordHash))
	}
	if patch.UpdatedAt != nil {
		add("updated_at", *patch.UpdatedAt)
	}

	q := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $1 RETURNING %s",
		strings.Join(setClauses, ", "), profileColumns)
	p, err := scanProfile(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, mapErr("update profile", err)
	}
	return p, nil
}

func (r *Profiles) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete profile", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Profiles) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return mapErr("ping", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*repository.Profile, error) {
	var (
		p        repository.Profile
		provider string
		age      *int32
		created  time.Time
		updated  time.Time
	)
	err := row.Scan(&p.ID, &p.Email, &provider, &p.ProviderSubject, &p.PasswordHash, &p.DisplayName, &p.FirstName, &p.LastName,
		&age, &p.AvatarURL, &p.EmailVerified, &created, &updated)
	if err != nil {
		return nil, err
	}
	p.Provider = types.Provider(provider)
	if age != nil {
		a := int(*age)
		p.Age = &a
	}
	p.CreatedAt = created.UTC()
	p.UpdatedAt = updated.UTC()
	return &p, nil
}

// mapErr traduce errores de pgx a la taxonomía del repositorio.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("pg: %s: %s: %w", op, pgErr.ConstraintName, repository.ErrConflict)
	}
	return fmt.Errorf("pg: %s: %w", op, errors.Join(repository.ErrUnavailable, err))
}

// nullIfEmpty returns nil if the string is empty, otherwise returns the string pointer.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
