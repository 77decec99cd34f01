package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "authgate",
		Short:         "authgate - email-keyed auth gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env es opcional; las variables ya seteadas ganan
			if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if f.configPath == "" {
				f.configPath = os.Getenv("CONFIG_PATH")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "path to YAML config (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(
		newServeCmd(f),
		newMigrateCmd(f),
		newTokenCmd(f),
		newConfigCmd(f),
	)
	return root
}

// loadConfig carga, valida e inicializa el logger. Un valor faltante es fatal.
func loadConfig(f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "authgate"})
	return cfg, nil
}
