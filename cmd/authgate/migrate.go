package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/store/pg"
	migrations "github.com/dropDatabas3/authgate/migrations/postgres"
)

func newMigrateCmd(f *rootFlags) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or revert the embedded Postgres migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate: storage.driver is %q, nothing to migrate", cfg.Storage.Driver)
			}

			ctx := cmd.Context()
			pool, err := pg.Connect(ctx, pg.PoolConfig{DSN: cfg.Storage.DSN, MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			m := &pg.Migrator{Pool: pool, FS: migrations.PostgresFS, Log: logger.L()}
			var n int
			if args[0] == "up" {
				n, err = m.Up(ctx, steps)
			} else {
				n, err = m.Down(ctx, steps)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: %d applied\n", args[0], n)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "max migrations to apply/revert (0 = all)")
	return cmd
}
