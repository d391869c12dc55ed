package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"parks-geojson/internal/logger"
)

// Statements creates the parks tables and indexes. Every statement is idempotent.
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS parks (
		id BIGSERIAL PRIMARY KEY,
		global_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		park_type TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		geometry JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_parks_global_id ON parks(global_id)`,
	`CREATE TABLE IF NOT EXISTS park_terms (
		park_id BIGINT NOT NULL REFERENCES parks(id) ON DELETE CASCADE,
		category TEXT NOT NULL,
		slug TEXT NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (park_id, category, slug)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_park_terms_slug ON park_terms(category, slug)`,
}

// EnsureSchema creates the tables on first run.
// Constraint: IF NOT EXISTS only; existing tables are never altered.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug().Int("idx", i).Msg("schema_exec")
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug().Msg("schema_done")
	return nil
}
