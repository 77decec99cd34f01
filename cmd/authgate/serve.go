package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authgate/internal/app"
	"github.com/dropDatabas3/authgate/internal/http/server"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the metrics listener when metrics.addr is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Run(gctx, server.Config{
					Name:            "api",
					Addr:            cfg.Server.Addr,
					ShutdownTimeout: cfg.Server.ShutdownTimeout,
				}, a.Handler)
			})
			if a.Metrics != nil {
				g.Go(func() error {
					return server.Run(gctx, server.Config{Name: "metrics", Addr: cfg.Metrics.Addr}, a.Metrics)
				})
			}

			logger.L().Info("authgate started",
				logger.String("addr", cfg.Server.Addr),
				logger.String("env", cfg.App.Env),
				logger.String("storage", cfg.Storage.Driver),
				logger.String("cache", cfg.Cache.Kind))
			err = g.Wait()
			logger.L().Info("authgate stopped")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
