package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/content-processor/internal/app"
	"github.com/markdave123-py/content-processor/internal/core"
	db "github.com/markdave123-py/content-processor/internal/core/database"
	"github.com/markdave123-py/content-processor/internal/core/extraction"
	"github.com/markdave123-py/content-processor/internal/core/ingestion_engine"
	"github.com/markdave123-py/content-processor/internal/models"
	"github.com/markdave123-py/content-processor/internal/services"
)

type processResult struct {
	File     string           `json:"file"`
	Document *models.Document `json:"document,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var (
		parallel int
		save     bool
		userID   string
		noText   bool
	)

	cmd := &cobra.Command{
		Use:   "process <files...>",
		Short: "Run files through the pipeline and print the documents as JSON",
		Long: `Each file is validated, extracted, cleaned, chunked and summarized. The content
type is taken from the file extension. With --save the documents are also stored in
DATABASE_URL.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var store core.DocumentStore
			if save {
				s, err := db.NewDatabaseClient(ctx, opts.cfg, opts.logger)
				if err != nil {
					return err
				}
				defer s.Close()
				store = s
			}
			svc, err := newService(opts, store)
			if err != nil {
				return err
			}

			var user *string
			if userID != "" {
				user = &userID
			}

			results := processFiles(ctx, svc, args, user, parallel, save)

			failed := 0
			for i := range results {
				if results[i].Error != "" {
					failed++
				}
				if noText && results[i].Document != nil {
					results[i].Document.Content = ""
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "files processed concurrently")
	cmd.Flags().BoolVar(&save, "save", false, "store the processed documents in DATABASE_URL")
	cmd.Flags().StringVar(&userID, "user", "", "owner recorded on the documents")
	cmd.Flags().BoolVar(&noText, "no-content", false, "omit the cleaned content from the output")
	return cmd
}

func newService(opts *rootOptions, store core.DocumentStore) (*services.DocumentService, error) {
	processor, err := ingestion_engine.NewProcessor(app.IngestConfigFrom(opts.cfg), opts.logger)
	if err != nil {
		return nil, err
	}
	return services.NewDocumentService(extraction.NewRegistry(opts.logger), processor, store, opts.cfg.MaxFileSize, opts.logger), nil
}

// processFiles runs every file through the pipeline, at most parallel at a time.
// Results keep the order of paths; a failing file does not stop the others.
func processFiles(ctx context.Context, svc *services.DocumentService, paths []string, user *string, parallel int, save bool) []processResult {
	results := make([]processResult, len(paths))

	var g errgroup.Group
	g.SetLimit(max(1, parallel))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = processFile(ctx, svc, path, user, save)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func processFile(ctx context.Context, svc *services.DocumentService, path string, user *string, save bool) processResult {
	res := processResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	req := services.UploadRequest{Filename: filepath.Base(path), Data: data, UserID: user}
	var doc *models.Document
	if save {
		doc, err = svc.Upload(ctx, req)
	} else {
		doc, err = svc.Process(ctx, req)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Document = doc
	return res
}
