package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/slawatch/internal/ports/secondary"
)

const escalationColumns = `id, entity_type, entity_id, escalated_by, escalated_to, reason, status, resolved_by, resolution, created_at, resolved_at`

// EscalationRepository implements secondary.EscalationRepository with SQLite.
type EscalationRepository struct {
	db *sql.DB
}

// NewEscalationRepository creates a new SQLite escalation repository.
func NewEscalationRepository(db *sql.DB) *EscalationRepository {
	return &EscalationRepository{db: db}
}

// Create persists a new escalation. An empty ID is allocated by the store
// within the insert and written back to escalation.ID.
func (r *EscalationRepository) Create(ctx context.Context, escalation *secondary.EscalationRecord) error {
	idExpr := "?"
	args := []any{
		escalation.ID,
		escalation.EntityType,
		escalation.EntityID,
		escalation.EscalatedBy,
		escalation.EscalatedTo,
		escalation.Reason,
		escalation.Status,
	}
	if escalation.ID == "" {
		idExpr = nextIDExpr("escalations", "ESC-")
		args = args[1:]
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO escalations (id, entity_type, entity_id, escalated_by, escalated_to, reason, status) VALUES (`+idExpr+`, ?, ?, ?, ?, ?, ?) RETURNING id`,
		args...,
	).Scan(&escalation.ID)
	if err != nil {
		return fmt.Errorf("failed to create escalation: %w", err)
	}

	return nil
}

// GetByID retrieves an escalation by its ID.
func (r *EscalationRepository) GetByID(ctx context.Context, id string) (*secondary.EscalationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+escalationColumns+` FROM escalations WHERE id = ?`,
		id,
	)
	record, err := scanEscalation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("escalation %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}
	return record, nil
}

// List retrieves escalations matching the given filters, newest first.
func (r *EscalationRepository) List(ctx context.Context, filters secondary.EscalationFilters) ([]*secondary.EscalationRecord, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE 1=1`
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.EscalatedTo != "" {
		query += " AND escalated_to = ?"
		args = append(args, filters.EscalatedTo)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer rows.Close()

	escalations := []*secondary.EscalationRecord{}
	for rows.Next() {
		record, err := scanEscalation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		escalations = append(escalations, record)
	}

	return escalations, rows.Err()
}

// FindPendingByEntity returns the newest pending escalation for an entity, or nil.
func (r *EscalationRepository) FindPendingByEntity(ctx context.Context, entityType, entityID string) (*secondary.EscalationRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+escalationColumns+` FROM escalations
		WHERE entity_type = ? AND entity_id = ? AND status = 'pending'
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		entityType, entityID,
	)
	record, err := scanEscalation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending escalation: %w", err)
	}
	return record, nil
}

// Resolve marks an escalation resolved. All resolution fields are written in
// one statement, overwriting any earlier resolution.
func (r *EscalationRepository) Resolve(ctx context.Context, id, resolvedBy, resolution string, resolvedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escalations SET status = 'resolved', resolved_by = ?, resolution = ?, resolved_at = ? WHERE id = ?`,
		resolvedBy, resolution, formatTime(resolvedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve escalation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("escalation %s: %w", id, secondary.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEscalation(row rowScanner) (*secondary.EscalationRecord, error) {
	var (
		resolvedBy sql.NullString
		resolution sql.NullString
		createdAt  time.Time
		resolvedAt sql.NullTime
	)

	record := &secondary.EscalationRecord{}
	err := row.Scan(&record.ID, &record.EntityType, &record.EntityID, &record.EscalatedBy, &record.EscalatedTo,
		&record.Reason, &record.Status, &resolvedBy, &resolution, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	record.ResolvedBy = resolvedBy.String
	record.Resolution = resolution.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if resolvedAt.Valid {
		record.ResolvedAt = resolvedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}

// Ensure EscalationRepository implements the interface
var _ secondary.EscalationRepository = (*EscalationRepository)(nil)
