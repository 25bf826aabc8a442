package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/slawatch/internal/adapters/sqlite"
	"github.com/example/slawatch/internal/ports/secondary"
)

func TestAssignmentQueueRepository_PendingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAssignmentQueueRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedAssignee(t, db, "AGT-001", "AGENT", true)
	seedQueueItem(t, db, "QUEUE-002", "EVT-002", base.Add(time.Minute))
	seedQueueItem(t, db, "QUEUE-001", "EVT-001", base)
	seedQueueItem(t, db, "QUEUE-003", "EVT-003", base.Add(2*time.Minute))

	pending, err := repo.ListPending(ctx, 2)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "QUEUE-001" || pending[1].ID != "QUEUE-002" {
		t.Fatalf("pending = %v, want oldest two", pending)
	}

	if err := repo.Assign(ctx, "QUEUE-001", "AGT-001"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	item, err := repo.GetByID(ctx, "QUEUE-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if item.Status != secondary.AssignmentStatusAssigned || item.AssigneeID != "AGT-001" || item.AssignedAt == "" {
		t.Errorf("item = %+v, want assigned to AGT-001", item)
	}

	count, err := repo.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountPending = %d, want 2", count)
	}

	t.Run("assigning a non-pending item fails", func(t *testing.T) {
		err := repo.Assign(ctx, "QUEUE-001", "AGT-001")
		if !errors.Is(err, secondary.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestAssignmentQueueRepository_RecordFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAssignmentQueueRepository(db)
	ctx := context.Background()
	seedQueueItem(t, db, "QUEUE-001", "EVT-001", time.Now())

	if err := repo.RecordFailure(ctx, "QUEUE-001", "assignee at capacity", 2); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	item, _ := repo.GetByID(ctx, "QUEUE-001")
	if item.Attempts != 1 || item.Status != secondary.AssignmentStatusPending {
		t.Errorf("after first failure: %+v", item)
	}
	if item.LastError != "assignee at capacity" {
		t.Errorf("LastError = %q", item.LastError)
	}

	if err := repo.RecordFailure(ctx, "QUEUE-001", "still at capacity", 2); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	item, _ = repo.GetByID(ctx, "QUEUE-001")
	if item.Attempts != 2 || item.Status != secondary.AssignmentStatusFailed {
		t.Errorf("after second failure: %+v, want parked as failed", item)
	}

	if err := repo.RecordFailure(ctx, "QUEUE-404", "x", 2); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignmentQueueRepository_EnqueueAllocatesID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAssignmentQueueRepository(db)
	ctx := context.Background()

	item := &secondary.AssignmentItemRecord{EntityType: "ORGANIZER", EntityID: "ORG-001"}
	if err := repo.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if item.ID != "QUEUE-001" {
		t.Errorf("first ID = %q, want QUEUE-001", item.ID)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != secondary.AssignmentStatusPending || got.Attempts != 0 || got.CreatedAt == "" {
		t.Errorf("item = %+v", got)
	}

	next := &secondary.AssignmentItemRecord{EntityType: "EVENT", EntityID: "EVT-001"}
	if err := repo.Enqueue(ctx, next); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if next.ID != "QUEUE-002" {
		t.Errorf("next ID = %q, want QUEUE-002", next.ID)
	}

	if _, err := repo.GetByID(ctx, "QUEUE-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignmentQueueRepository_ListActiveAssignees(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAssignmentQueueRepository(db)

	seedAssignee(t, db, "AGT-002", "AGENT", true)
	seedAssignee(t, db, "AGT-001", "AGENT", true)
	seedAssignee(t, db, "AGT-003", "AGENT", false)
	seedAssignee(t, db, "HEAD-001", "HEAD", true)

	got, err := repo.ListActiveAssignees(context.Background(), "AGENT")
	if err != nil {
		t.Fatalf("ListActiveAssignees failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "AGT-001" || got[1].ID != "AGT-002" {
		t.Errorf("got %v, want [AGT-001 AGT-002]", got)
	}
	if !got[0].Active {
		t.Error("Active should be true")
	}
}
