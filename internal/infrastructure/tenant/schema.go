package tenant

import (
	"database/sql"
	"fmt"
)

// schemaStatements creates the per-tenant tables on first activation. All
// statements are idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		student_id TEXT,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		FOREIGN KEY (student_id) REFERENCES students(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_type_created
		ON events(event_type, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_student
		ON events(student_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS cached_metrics (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		metric_data TEXT NOT NULL,
		calculated_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		UNIQUE(tenant_id, metric_type)
	)`,
}

// ensureSchema applies the tenant schema
func ensureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
