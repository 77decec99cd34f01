package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authgate/internal/jwt"
)

func newTokenCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect session tokens (operator tooling)",
	}
	cmd.AddCommand(newTokenIssueCmd(f), newTokenVerifyCmd(f))
	return cmd
}

func codecFromConfig(f *rootFlags) (*jwt.Codec, time.Duration, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, 0, err
	}
	c, err := jwt.NewCodec([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, jwt.WithLeeway(cfg.JWT.Leeway))
	return c, cfg.JWT.TTL, err
}

func newTokenIssueCmd(f *rootFlags) *cobra.Command {
	var (
		sub   string
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for a subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec, defTTL, err := codecFromConfig(f)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = defTTL
			}
			var extra map[string]any
			if email != "" {
				extra = map[string]any{"email": email}
			}
			tok, exp, err := codec.Issue(sub, extra, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "subject (profile id)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default jwt.ttl)")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func newTokenVerifyCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, _, err := codecFromConfig(f)
			if err != nil {
				return err
			}
			c, err := codec.Verify(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"sub":   c.Subject,
				"email": c.Email,
				"iss":   c.Issuer,
				"iat":   c.IssuedAt.UTC().Format(time.RFC3339),
				"exp":   c.ExpiresAt.UTC().Format(time.RFC3339),
			})
		},
	}
}
