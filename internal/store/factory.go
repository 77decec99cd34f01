// Package store arma el ProfileRepository según la configuración:
// memory para dev/tests, postgres para producción, opcionalmente con
// un read-through de cache por encima.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/store/cached"
	"github.com/dropDatabas3/authgate/internal/store/memory"
	"github.com/dropDatabas3/authgate/internal/store/pg"
)

type Config struct {
	Driver          string // "memory" | "postgres"
	DSN             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	// CacheTTL > 0 activa el read-through de perfiles.
	CacheTTL time.Duration
}

// Stores es lo que el resto de la app necesita del storage.
type Stores struct {
	Profiles repository.ProfileRepository
	// Pool es nil con driver memory.
	Pool  *pgxpool.Pool
	Close func()
}

// Open abre el driver configurado. c puede ser nil si no se quiere cache.
func Open(ctx context.Context, cfg Config, c cache.Client, log *zap.Logger) (*Stores, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var st Stores
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory", "mem":
		st.Profiles = memory.NewProfiles()
		st.Close = func() {}
	case "postgres", "pg", "postgresql":
		pool, err := pg.Connect(ctx, pg.PoolConfig{
			DSN:             cfg.DSN,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		st.Pool = pool
		st.Profiles = pg.NewProfiles(pool)
		st.Close = pool.Close
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if c != nil && cfg.CacheTTL > 0 {
		st.Profiles = cached.NewProfiles(st.Profiles, c, cfg.CacheTTL, log.Named("profile-cache"))
	}
	log.Info("profile store ready", zap.String("driver", cfg.Driver), zap.Bool("cached", c != nil && cfg.CacheTTL > 0))
	return &st, nil
}
