package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/slawatch/internal/ports/secondary"
)

// entityTables maps a monitored entity type to the table holding it.
var entityTables = map[string]string{
	"EVENT":     "events",
	"ORGANIZER": "organizers",
}

// CandidateRepository implements secondary.CandidateRepository with SQLite.
type CandidateRepository struct {
	db *sql.DB
}

// NewCandidateRepository creates a new SQLite candidate repository.
func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// FindBreachCandidates returns entities still in query.State that were
// created at or before query.OlderThan, oldest first. created_at has whole
// second precision, so comparing against the cutoff truncated to the second
// with <= matches exactly the entities whose age has reached the threshold.
func (r *CandidateRepository) FindBreachCandidates(ctx context.Context, query secondary.CandidateQuery) ([]*secondary.CandidateRecord, error) {
	table, ok := entityTables[query.EntityType]
	if !ok {
		return nil, fmt.Errorf("class %s: no table for entity type %q", query.Class, query.EntityType)
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, state, created_at FROM %s WHERE state = ? AND created_at <= ? ORDER BY created_at ASC, id ASC`, table),
		query.State, formatTime(query.OlderThan),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s candidates: %w", query.Class, err)
	}
	defer rows.Close()

	candidates := []*secondary.CandidateRecord{}
	for rows.Next() {
		var (
			record    = &secondary.CandidateRecord{EntityType: query.EntityType}
			createdAt time.Time
		)
		if err := rows.Scan(&record.EntityID, &record.State, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s candidate: %w", query.Class, err)
		}
		record.CreatedAt = createdAt.UTC()
		candidates = append(candidates, record)
	}

	return candidates, rows.Err()
}

// Ensure CandidateRepository implements the interface
var _ secondary.CandidateRepository = (*CandidateRepository)(nil)
