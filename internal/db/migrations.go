package db

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_escalation_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_assignment_queue",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_activity_log_request_meta",
		Up:      migrationV3,
	},
}

// RunMigrations applies pending migrations in order, one transaction each.
func RunMigrations(db *sql.DB) error {
	if err := ensureVersionTable(db); err != nil {
		return err
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log := logrus.WithFields(logrus.Fields{
			"component": "db",
			"version":   migration.Version,
			"migration": migration.Name,
		})
		log.Info("Running migration")

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		log.Info("Migration completed")
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

func ensureVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func execAll(tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func migrationV1(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			organizer_id TEXT,
			state TEXT NOT NULL CHECK(state IN ('draft', 'published', 'cancelled')) DEFAULT 'draft',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_state_created ON events(state, created_at)`,
		`CREATE TABLE IF NOT EXISTS organizers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			state TEXT NOT NULL CHECK(state IN ('pending_verification', 'verified', 'rejected')) DEFAULT 'pending_verification',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_organizers_state_created ON organizers(state, created_at)`,
		`CREATE TABLE IF NOT EXISTS escalations (
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
		)`,
		`CREATE INDEX IF NOT EXISTS idx_escalations_entity ON escalations(entity_type, entity_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_escalations_status ON escalations(status)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			entity_type TEXT,
			entity_id TEXT,
			logged_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_entity ON activity_logs(entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_actor ON activity_logs(actor_id)`,
	)
}

func migrationV2(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS assignees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS assignment_queue (
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
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignment_queue_status ON assignment_queue(status, created_at)`,
	)
}

func migrationV3(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE activity_logs ADD COLUMN ip_address TEXT`,
		`ALTER TABLE activity_logs ADD COLUMN user_agent TEXT`,
	)
}
