// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/slawatch/internal/db"
)

const sqliteTime = "2006-01-02 15:04:05"

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// openFileDB opens a file-backed database through db.Open, so separate
// handles on the same path behave like separate processes.
func openFileDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	database, err := db.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// seedEvent inserts an event in the given state created at createdAt.
func seedEvent(t *testing.T, db *sql.DB, id, state string, createdAt time.Time) {
	t.Helper()
	_, err := db.Exec("INSERT INTO events (id, title, state, created_at) VALUES (?, ?, ?, ?)",
		id, "Event "+id, state, createdAt.UTC().Format(sqliteTime))
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
}

// seedOrganizer inserts an organizer in the given state created at createdAt.
func seedOrganizer(t *testing.T, db *sql.DB, id, state string, createdAt time.Time) {
	t.Helper()
	_, err := db.Exec("INSERT INTO organizers (id, name, state, created_at) VALUES (?, ?, ?, ?)",
		id, "Organizer "+id, state, createdAt.UTC().Format(sqliteTime))
	if err != nil {
		t.Fatalf("failed to seed organizer: %v", err)
	}
}

// seedAssignee inserts an assignee.
func seedAssignee(t *testing.T, db *sql.DB, id, role string, active bool) {
	t.Helper()
	_, err := db.Exec("INSERT INTO assignees (id, name, role, active) VALUES (?, ?, ?, ?)",
		id, "Assignee "+id, role, active)
	if err != nil {
		t.Fatalf("failed to seed assignee: %v", err)
	}
}

// seedQueueItem inserts a pending queue item created at createdAt.
func seedQueueItem(t *testing.T, db *sql.DB, id, entityID string, createdAt time.Time) {
	t.Helper()
	_, err := db.Exec("INSERT INTO assignment_queue (id, entity_type, entity_id, created_at) VALUES (?, 'EVENT', ?, ?)",
		id, entityID, createdAt.UTC().Format(sqliteTime))
	if err != nil {
		t.Fatalf("failed to seed queue item: %v", err)
	}
}
