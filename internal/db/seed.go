package db

import (
	"database/sql"
	"fmt"
	"time"
)

// sqliteTime is the layout CURRENT_TIMESTAMP writes.
const sqliteTime = "2006-01-02 15:04:05"

// SeedFixtures populates the database with development fixtures: entities on
// both sides of the default 24h threshold, assignees and a few queue items.
func SeedFixtures(database *sql.DB, now time.Time) error {
	ago := func(d time.Duration) string { return now.Add(-d).UTC().Format(sqliteTime) }

	events := []struct{ id, title, organizer, state, created string }{
		{"EVT-001", "Spring Jazz Night", "ORG-001", "draft", ago(72 * time.Hour)},
		{"EVT-002", "Harbour Food Market", "ORG-001", "draft", ago(26 * time.Hour)},
		{"EVT-003", "Design Meetup", "ORG-002", "draft", ago(2 * time.Hour)},
		{"EVT-004", "City Marathon", "ORG-002", "published", ago(96 * time.Hour)},
	}
	for _, e := range events {
		if _, err := database.Exec(
			"INSERT INTO events (id, title, organizer_id, state, created_at) VALUES (?, ?, ?, ?, ?)",
			e.id, e.title, e.organizer, e.state, e.created,
		); err != nil {
			return fmt.Errorf("seed events: %w", err)
		}
	}

	organizers := []struct{ id, name, state, created string }{
		{"ORG-001", "Blue Door Collective", "verified", ago(400 * time.Hour)},
		{"ORG-002", "Northside Runners", "verified", ago(300 * time.Hour)},
		{"ORG-003", "Lantern Theatre", "pending_verification", ago(30 * time.Hour)},
		{"ORG-004", "Pop-up Cinema Club", "pending_verification", ago(5 * time.Hour)},
	}
	for _, o := range organizers {
		if _, err := database.Exec(
			"INSERT INTO organizers (id, name, state, created_at) VALUES (?, ?, ?, ?)",
			o.id, o.name, o.state, o.created,
		); err != nil {
			return fmt.Errorf("seed organizers: %w", err)
		}
	}

	assignees := []struct {
		id, name, role string
		active         bool
	}{
		{"AGT-001", "Ada Agent", "AGENT", true},
		{"AGT-002", "Ben Agent", "AGENT", true},
		{"AGT-003", "Cy Agent", "AGENT", false},
		{"HEAD-001", "Hana Head", "HEAD", true},
	}
	for _, a := range assignees {
		if _, err := database.Exec(
			"INSERT INTO assignees (id, name, role, active) VALUES (?, ?, ?, ?)",
			a.id, a.name, a.role, a.active,
		); err != nil {
			return fmt.Errorf("seed assignees: %w", err)
		}
	}

	queue := []struct{ id, entityType, entityID string }{
		{"QUEUE-001", "EVENT", "EVT-001"},
		{"QUEUE-002", "EVENT", "EVT-002"},
		{"QUEUE-003", "ORGANIZER", "ORG-003"},
	}
	for i, q := range queue {
		if _, err := database.Exec(
			"INSERT INTO assignment_queue (id, entity_type, entity_id, status, created_at) VALUES (?, ?, ?, 'pending', ?)",
			q.id, q.entityType, q.entityID, ago(time.Duration(len(queue)-i)*time.Minute),
		); err != nil {
			return fmt.Errorf("seed assignment queue: %w", err)
		}
	}

	return nil
}
