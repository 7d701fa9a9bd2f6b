package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/content-processor/internal/config"
)

type rootOptions struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var verbose bool

	cmd := &cobra.Command{
		Use:          "contentctl",
		Short:        "Process documents with the content processor pipeline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = config.LoadConfig()
			var w io.Writer = io.Discard
			if verbose {
				w = cmd.ErrOrStderr()
			}
			opts.logger = config.NewLogger(opts.cfg, w)
			return opts.cfg.Validate()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to stderr")

	cmd.AddCommand(
		newProcessCmd(opts),
		newFormatsCmd(),
		newTokenCmd(opts),
	)
	return cmd
}
