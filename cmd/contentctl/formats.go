package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/content-processor/internal/core/extraction"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List accepted file extensions and their content types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ext := range extraction.Extensions() {
				mt, _ := extraction.MIMEForExtension(ext)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", ext, mt); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
