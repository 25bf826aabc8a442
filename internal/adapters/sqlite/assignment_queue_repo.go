package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/slawatch/internal/ports/secondary"
)

const queueColumns = `id, entity_type, entity_id, status, assignee_id, attempts, last_error, created_at, assigned_at`

// AssignmentQueueRepository implements secondary.AssignmentQueueRepository with SQLite.
type AssignmentQueueRepository struct {
	db    *sql.DB
	clock func() time.Time
}

// NewAssignmentQueueRepository creates a new SQLite assignment queue repository.
func NewAssignmentQueueRepository(db *sql.DB) *AssignmentQueueRepository {
	return &AssignmentQueueRepository{db: db, clock: time.Now}
}

// Enqueue persists a new pending queue item. An empty ID is allocated by the
// store within the insert and written back to item.ID.
func (r *AssignmentQueueRepository) Enqueue(ctx context.Context, item *secondary.AssignmentItemRecord) error {
	idExpr := "?"
	args := []any{item.ID, item.EntityType, item.EntityID}
	if item.ID == "" {
		idExpr = nextIDExpr("assignment_queue", "QUEUE-")
		args = args[1:]
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO assignment_queue (id, entity_type, entity_id, status) VALUES (`+idExpr+`, ?, ?, 'pending') RETURNING id`,
		args...,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to enqueue item: %w", err)
	}
	return nil
}

// GetByID retrieves a queue item by its ID.
func (r *AssignmentQueueRepository) GetByID(ctx context.Context, id string) (*secondary.AssignmentItemRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM assignment_queue WHERE id = ?`, id)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("queue item %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}
	return item, nil
}

// ListPending returns up to limit pending items, oldest first.
func (r *AssignmentQueueRepository) ListPending(ctx context.Context, limit int) ([]*secondary.AssignmentItemRecord, error) {
	query := `SELECT ` + queueColumns + ` FROM assignment_queue WHERE status = 'pending' ORDER BY created_at ASC, rowid ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending items: %w", err)
	}
	defer rows.Close()

	items := []*secondary.AssignmentItemRecord{}
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountPending returns the number of pending items.
func (r *AssignmentQueueRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignment_queue WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending items: %w", err)
	}
	return count, nil
}

// Assign marks a pending item assigned. Items that are no longer pending are
// reported as not found.
func (r *AssignmentQueueRepository) Assign(ctx context.Context, itemID, assigneeID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE assignment_queue SET status = 'assigned', assignee_id = ?, assigned_at = ? WHERE id = ? AND status = 'pending'`,
		assigneeID, formatTime(r.clock()), itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign queue item: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("pending queue item %s: %w", itemID, secondary.ErrNotFound)
	}
	return nil
}

// RecordFailure increments attempts and parks the item as failed once
// attempts reach maxAttempts.
func (r *AssignmentQueueRepository) RecordFailure(ctx context.Context, itemID, lastError string, maxAttempts int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE assignment_queue
		SET attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN 'failed' ELSE status END
		WHERE id = ?`,
		lastError, maxAttempts, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to record queue item failure: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("queue item %s: %w", itemID, secondary.ErrNotFound)
	}
	return nil
}

// ListActiveAssignees returns active assignees for a role, ordered by ID.
func (r *AssignmentQueueRepository) ListActiveAssignees(ctx context.Context, role string) ([]*secondary.AssigneeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, role, active FROM assignees WHERE role = ? AND active = 1 ORDER BY id ASC`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	defer rows.Close()

	assignees := []*secondary.AssigneeRecord{}
	for rows.Next() {
		a := &secondary.AssigneeRecord{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan assignee: %w", err)
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}

func scanQueueItem(row rowScanner) (*secondary.AssignmentItemRecord, error) {
	var (
		assigneeID sql.NullString
		lastError  sql.NullString
		createdAt  time.Time
		assignedAt sql.NullTime
	)

	item := &secondary.AssignmentItemRecord{}
	err := row.Scan(&item.ID, &item.EntityType, &item.EntityID, &item.Status, &assigneeID,
		&item.Attempts, &lastError, &createdAt, &assignedAt)
	if err != nil {
		return nil, err
	}

	item.AssigneeID = assigneeID.String
	item.LastError = lastError.String
	item.CreatedAt = createdAt.Format(time.RFC3339)
	if assignedAt.Valid {
		item.AssignedAt = assignedAt.Time.Format(time.RFC3339)
	}
	return item, nil
}

// Ensure AssignmentQueueRepository implements the interface
var _ secondary.AssignmentQueueRepository = (*AssignmentQueueRepository)(nil)
