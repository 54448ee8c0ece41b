package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migrate applies every embedded *.up.sql file in name order.
// The statements are idempotent (CREATE TABLE IF NOT EXISTS), so re-running is safe.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	files, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, filename := range files {
		content, err := migrationFS.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", filename, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute migration %s: %w", filename, err)
			}
		}
		logger.Info("migration applied", zap.String("file", filename))
	}

	return nil
}

// splitStatements breaks a migration file on ';' since the driver runs one
// statement per Exec unless multiStatements is enabled on the DSN.
func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
