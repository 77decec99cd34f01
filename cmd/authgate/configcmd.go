package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authgate/internal/security/secretbox"
)

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok (env=%s storage=%s cache=%s)\n",
				cfg.App.Env, cfg.Storage.Driver, cfg.Cache.Kind)
			return nil
		},
	})
	cmd.AddCommand(newEncryptCmd())
	return cmd
}

// newEncryptCmd sella un valor para usarlo como "enc:..." en config o env.
func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <value>",
		Short: "Seal a secret with " + secretbox.EnvVar,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := secretbox.FromString(os.Getenv(secretbox.EnvVar))
			if err != nil {
				return err
			}
			sealed, err := box.Seal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secretbox.Prefix+sealed)
			return nil
		},
	}
}
