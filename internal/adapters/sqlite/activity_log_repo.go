package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/slawatch/internal/ports/secondary"
)

// ActivityLogRepository implements secondary.ActivityLogRepository with SQLite.
// Entries are append-only.
type ActivityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new SQLite activity log repository.
func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Append persists a new activity log entry.
func (r *ActivityLogRepository) Append(ctx context.Context, entry *secondary.ActivityLogRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, actor_id, action, entity_type, entity_id, ip_address, user_agent, logged_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ActorID,
		entry.Action,
		nullString(entry.EntityType),
		nullString(entry.EntityID),
		nullString(entry.IPAddress),
		nullString(entry.UserAgent),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// List retrieves activity log entries matching the given filters, newest first.
func (r *ActivityLogRepository) List(ctx context.Context, filters secondary.ActivityLogFilters) ([]*secondary.ActivityLogRecord, error) {
	query := `SELECT id, actor_id, action, entity_type, entity_id, ip_address, user_agent, logged_at FROM activity_logs WHERE 1=1`
	args := []any{}

	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}
	if filters.Action != "" {
		query += " AND action = ?"
		args = append(args, filters.Action)
	}
	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	query += " ORDER BY logged_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	entries := []*secondary.ActivityLogRecord{}
	for rows.Next() {
		var entityType, entityID, ipAddress, userAgent sql.NullString
		entry := &secondary.ActivityLogRecord{}
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entityType, &entityID, &ipAddress, &userAgent, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entry.EntityType = entityType.String
		entry.EntityID = entityID.String
		entry.IPAddress = ipAddress.String
		entry.UserAgent = userAgent.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Ensure ActivityLogRepository implements the interface
var _ secondary.ActivityLogRepository = (*ActivityLogRepository)(nil)
