package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"
)

//go:embed scripts/*.sql
var bootstrapFS embed.FS

// schemaVersion is the version row written by the bootstrap scripts.
const schemaVersion = 1

// EnsureBootstrapped creates the schema unless the meta table already records the
// current version.
func EnsureBootstrapped(ctx context.Context, db *sql.DB, d dialect, logger *slog.Logger) error {
	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	var exists bool
	if err := db.QueryRowContext(ctxBoot, d.metaExistsQuery).Scan(&exists); err != nil {
		return fmt.Errorf("meta table check failed: %w", err)
	}
	if !exists {
		return runBootstrap(ctxBoot, db, d, logger)
	}

	var hasVersion bool
	q := d.rebind(`SELECT EXISTS (SELECT 1 FROM content_processor_meta WHERE version = ?)`)
	if err := db.QueryRowContext(ctxBoot, q, schemaVersion).Scan(&hasVersion); err != nil {
		return fmt.Errorf("meta version check failed: %w", err)
	}
	if !hasVersion {
		return runBootstrap(ctxBoot, db, d, logger)
	}

	logger.Debug("schema already bootstrapped", "dialect", d.name, "version", schemaVersion)
	return nil
}

func runBootstrap(ctx context.Context, db *sql.DB, d dialect, logger *slog.Logger) error {
	sqlBytes, err := bootstrapFS.ReadFile(d.script)
	if err != nil {
		return fmt.Errorf("read %s: %w", d.script, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}

	logger.Info("database schema bootstrapped", "dialect", d.name, "version", schemaVersion)
	return nil
}
