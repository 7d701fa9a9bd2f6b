package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markdave123-py/content-processor/internal/config"
	"github.com/markdave123-py/content-processor/internal/core"
)

// NewDatabaseClient picks the store from the DATABASE_URL scheme:
// postgres:// or postgresql:// (pgx + pgvector), mongodb:// or mongodb+srv://,
// and sqlite: or file: (modernc SQLite).
func NewDatabaseClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.DocumentStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	u := cfg.DatabaseURL
	switch {
	case hasScheme(u, "postgres://", "postgresql://"):
		logger.Info("using postgres document store")
		return NewPostgresClient(ctx, u, cfg.SslCertPath, logger)
	case hasScheme(u, "mongodb://", "mongodb+srv://"):
		logger.Info("using mongodb document store", "database", cfg.DatabaseName)
		return NewMongoClient(ctx, u, cfg.DatabaseName, logger)
	case hasScheme(u, "sqlite:"):
		logger.Info("using sqlite document store")
		return NewSQLiteClient(ctx, strings.TrimPrefix(u, "sqlite:"), logger)
	case hasScheme(u, "file:"):
		logger.Info("using sqlite document store")
		return NewSQLiteClient(ctx, u, logger)
	}
	return nil, fmt.Errorf("unsupported DATABASE_URL scheme in %q", redact(u))
}

func hasScheme(u string, schemes ...string) bool {
	lower := strings.ToLower(u)
	for _, s := range schemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// redact keeps only the scheme so credentials never reach error messages.
func redact(u string) string {
	if i := strings.Index(u, ":"); i >= 0 {
		return u[:i+1] + "..."
	}
	return "..."
}
