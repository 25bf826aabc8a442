package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh slawatch installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(), so a repository referencing a column that
// does not exist here fails its tests with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration to the migrations list
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
const SchemaSQL = `
-- Events (monitored: stuck while in 'draft')
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	organizer_id TEXT,
	state TEXT NOT NULL CHECK(state IN ('draft', 'published', 'cancelled')) DEFAULT 'draft',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_state_created ON events(state, created_at);

-- Organizers (monitored: stuck while in 'pending_verification')
CREATE TABLE IF NOT EXISTS organizers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	state TEXT NOT NULL CHECK(state IN ('pending_verification', 'verified', 'rejected')) DEFAULT 'pending_verification',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_organizers_state_created ON organizers(state, created_at);

-- Escalations (SLA breaches routed to a role)
CREATE TABLE IF NOT EXISTS escalations (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL CHECK(entity_type IN ('EVENT', 'ORGANIZER')),
	entity_id TEXT NOT NULL,
	escalated_by TEXT NOT NULL,
	escalated_to TEXT NOT NULL,
	reason TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'resolved')) DEFAULT 'pending',
	resolved_by TEXT,
	resolution TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_escalations_entity ON escalations(entity_type, entity_id, status);
CREATE INDEX IF NOT EXISTS idx_escalations_status ON escalations(status);

-- Activity logs (append-only audit trail)
CREATE TABLE IF NOT EXISTS activity_logs (
	id TEXT PRIMARY KEY,
	actor_id TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_type TEXT,
	entity_id TEXT,
	ip_address TEXT,
	user_agent TEXT,
	logged_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_logs_entity ON activity_logs(entity_id);
CREATE INDEX IF NOT EXISTS idx_activity_logs_actor ON activity_logs(actor_id);

-- Assignees (users that receive assignment queue items)
CREATE TABLE IF NOT EXISTS assignees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Assignment queue (work drained by the queue scheduler)
CREATE TABLE IF NOT EXISTS assignment_queue (
	id TEXT PRIMARY KEY,
	entity_type TEXT NOT NULL CHECK(entity_type IN ('EVENT', 'ORGANIZER')),
	entity_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'assigned', 'failed')) DEFAULT 'pending',
	assignee_id TEXT,
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	assigned_at DATETIME,
	FOREIGN KEY (assignee_id) REFERENCES assignees(id)
);

CREATE INDEX IF NOT EXISTS idx_assignment_queue_status ON assignment_queue(status, created_at);
`

// InitSchema brings the database up to the current schema.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install: create the modern schema directly and mark every
	// migration as applied.
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
