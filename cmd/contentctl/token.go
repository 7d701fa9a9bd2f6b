package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	middleware "github.com/markdave123-py/content-processor/internal/api/middlewares"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign an API bearer token for a user with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET not set")
			}
			token, err := middleware.IssueToken(opts.cfg.JWTSecret, args[0], ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
