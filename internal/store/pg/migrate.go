package pg

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Migrator aplica archivos NNNN_name_up.sql / NNNN_name_down.sql de un fs.FS.
// Lleva registro en schema_migrations para que "up" sea idempotente.
type Migrator struct {
	Pool *pgxpool.Pool
	FS   fs.FS
	Log  *zap.Logger
}

const ensureTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Up aplica las migraciones pendientes en orden ascendente. steps<=0 = todas.
func (m *Migrator) Up(ctx context.Context, steps int) (int, error) {
	if _, err := m.Pool.Exec(ctx, ensureTable); err != nil {
		return 0, fmt.Errorf("migrate: ensure table: %w", err)
	}
	files, err := listSQL(m.FS, "_up.sql")
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	applied := 0
	for _, f := range files {
		if steps > 0 && applied >= steps {
			break
		}
		version := versionOf(f, "_up.sql")
		var exists bool
		if err := m.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists); err != nil {
			return applied, fmt.Errorf("migrate: check %s: %w", version, err)
		}
		if exists {
			continue
		}
		if err := m.exec(ctx, f, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Down revierte las últimas steps migraciones aplicadas (steps<=0 = todas).
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	if _, err := m.Pool.Exec(ctx, ensureTable); err != nil {
		return 0, fmt.Errorf("migrate: ensure table: %w", err)
	}
	files, err := listSQL(m.FS, "_down.sql")
	if err != nil {
		return 0, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	reverted := 0
	for _, f := range files {
		if steps > 0 && reverted >= steps {
			break
		}
		version := versionOf(f, "_down.sql")
		var exists bool
		if err := m.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists); err != nil {
			return reverted, fmt.Errorf("migrate: check %s: %w", version, err)
		}
		if !exists {
			continue
		}
		if err := m.exec(ctx, f, `DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
			return reverted, err
		}
		reverted++
	}
	return reverted, nil
}

// exec corre el archivo y el registro en la misma transacción.
func (m *Migrator) exec(ctx context.Context, file, record, version string) error {
	b, err := fs.ReadFile(m.FS, file)
	if err != nil {
		return fmt.Errorf("migrate: read %s: %w", file, err)
	}
	tx, err := m.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("migrate: exec %s: %w", file, err)
	}
	if _, err := tx.Exec(ctx, record, version); err != nil {
		return fmt.Errorf("migrate: record %s: %w", version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("migrate: commit %s: %w", file, err)
	}
	if m.Log != nil {
		m.Log.Info("migration applied", zap.String("file", file))
	}
	return nil
}

func listSQL(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("migrate: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func versionOf(file, suffix string) string {
	return strings.TrimSuffix(path.Base(file), suffix)
}
