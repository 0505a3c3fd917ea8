package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// EnsureSchema creates the documents table and applies additive column
// migrations. Rows created before the enrichment columns existed keep
// working: the ALTERs are tolerated when the column is already present and
// absent values read back as NULL.
func EnsureSchema(db *sql.DB) error {
	const create = `
		CREATE TABLE IF NOT EXISTS documents (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			source_kind     TEXT NOT NULL,
			source_location TEXT NOT NULL,
			raw_text        TEXT NOT NULL,
			created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	// Additive evolution: enrichment columns arrived after the initial
	// schema shipped.
	for _, alter := range []string{
		`ALTER TABLE documents ADD COLUMN summary TEXT`,
		`ALTER TABLE documents ADD COLUMN deep_analysis TEXT`,
	} {
		if _, err := db.Exec(alter); err != nil {
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("failed to apply migration %q: %w", alter, err)
		}
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at)`); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}
