package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/example/slawatch/internal/ports/secondary"
)

// mockAssignmentQueueRepository implements secondary.AssignmentQueueRepository for testing.
type mockAssignmentQueueRepository struct {
	items     map[string]*secondary.AssignmentItemRecord
	order     []string
	assignees []*secondary.AssigneeRecord

	assignErrFor map[string]error // by item ID
	listErr      error
}

func newMockAssignmentQueueRepository() *mockAssignmentQueueRepository {
	return &mockAssignmentQueueRepository{
		items:        make(map[string]*secondary.AssignmentItemRecord),
		assignErrFor: make(map[string]error),
	}
}

func (m *mockAssignmentQueueRepository) add(n int) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("QUEUE-%03d", len(m.order)+1)
		m.items[id] = &secondary.AssignmentItemRecord{
			ID:         id,
			EntityType: "EVENT",
			EntityID:   fmt.Sprintf("EVT-%03d", len(m.order)+1),
			Status:     secondary.AssignmentStatusPending,
		}
		m.order = append(m.order, id)
	}
}

func (m *mockAssignmentQueueRepository) Enqueue(ctx context.Context, item *secondary.AssignmentItemRecord) error {
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	return nil
}

func (m *mockAssignmentQueueRepository) GetByID(ctx context.Context, id string) (*secondary.AssignmentItemRecord, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, fmt.Errorf("queue item %s: %w", id, secondary.ErrNotFound)
}

func (m *mockAssignmentQueueRepository) ListPending(ctx context.Context, limit int) ([]*secondary.AssignmentItemRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.AssignmentItemRecord
	for _, id := range m.order {
		if m.items[id].Status == secondary.AssignmentStatusPending {
			result = append(result, m.items[id])
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (m *mockAssignmentQueueRepository) CountPending(ctx context.Context) (int, error) {
	count := 0
	for _, item := range m.items {
		if item.Status == secondary.AssignmentStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *mockAssignmentQueueRepository) Assign(ctx context.Context, itemID, assigneeID string) error {
	if err := m.assignErrFor[itemID]; err != nil {
		return err
	}
	item := m.items[itemID]
	item.Status = secondary.AssignmentStatusAssigned
	item.AssigneeID = assigneeID
	return nil
}

func (m *mockAssignmentQueueRepository) RecordFailure(ctx context.Context, itemID, lastError string, maxAttempts int) error {
	item := m.items[itemID]
	item.Attempts++
	item.LastError = lastError
	if item.Attempts >= maxAttempts {
		item.Status = secondary.AssignmentStatusFailed
	}
	return nil
}

func (m *mockAssignmentQueueRepository) ListActiveAssignees(ctx context.Context, role string) ([]*secondary.AssigneeRecord, error) {
	var result []*secondary.AssigneeRecord
	for _, a := range m.assignees {
		if a.Role == role && a.Active {
			result = append(result, a)
		}
	}
	return result, nil
}

func newTestResolver(repo *mockAssignmentQueueRepository, batchSize, maxRetries int) *RoundRobinResolver {
	logger, _ := logtest.NewNullLogger()
	return NewRoundRobinResolver(repo, "AGENT", batchSize, maxRetries, logger)
}

func TestRoundRobinResolver_AssignsInRotation(t *testing.T) {
	repo := newMockAssignmentQueueRepository()
	repo.add(4)
	repo.assignees = []*secondary.AssigneeRecord{
		{ID: "AGT-001", Role: "AGENT", Active: true},
		{ID: "AGT-002", Role: "AGENT", Active: true},
		{ID: "AGT-003", Role: "AGENT", Active: false},
		{ID: "HEAD-001", Role: "HEAD", Active: true},
	}
	r := newTestResolver(repo, 10, 3)

	res, err := r.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("ProcessQueue failed: %v", err)
	}
	if res.Processed != 4 || res.Remaining != 0 {
		t.Errorf("result = %+v, want {4 0}", res)
	}

	want := map[string]string{
		"QUEUE-001": "AGT-001",
		"QUEUE-002": "AGT-002",
		"QUEUE-003": "AGT-001",
		"QUEUE-004": "AGT-002",
	}
	for id, assignee := range want {
		if got := repo.items[id].AssigneeID; got != assignee {
			t.Errorf("%s assigned to %q, want %q", id, got, assignee)
		}
	}
}

func TestRoundRobinResolver_RespectsBatchSize(t *testing.T) {
	repo := newMockAssignmentQueueRepository()
	repo.add(7)
	repo.assignees = []*secondary.AssigneeRecord{{ID: "AGT-001", Role: "AGENT", Active: true}}
	r := newTestResolver(repo, 5, 3)

	res, err := r.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("ProcessQueue failed: %v", err)
	}
	if res.Processed != 5 || res.Remaining != 2 {
		t.Errorf("result = %+v, want {5 2}", res)
	}
}

func TestRoundRobinResolver_EmptyQueue(t *testing.T) {
	repo := newMockAssignmentQueueRepository()
	r := newTestResolver(repo, 10, 3)

	res, err := r.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("ProcessQueue failed: %v", err)
	}
	if res.Processed != 0 || res.Remaining != 0 {
		t.Errorf("result = %+v, want zero", res)
	}
}

func TestRoundRobinResolver_NoAssignees(t *testing.T) {
	repo := newMockAssignmentQueueRepository()
	repo.add(2)
	r := newTestResolver(repo, 10, 3)

	_, err := r.ProcessQueue(context.Background())
	if err == nil {
		t.Fatal("expected error with pending items and no assignees")
	}
}

func TestRoundRobinResolver_ListError(t *testing.T) {
	repo := newMockAssignmentQueueRepository()
	repo.listErr = errors.New("no such table: assignment_queue")
	r := newTestResolver(repo, 10, 3)

	_, err := r.ProcessQueue(context.Background())
	if !errors.Is(err, repo.listErr) {
		t.Errorf("err = %v, want wrapped list error", err)
	}
}

func TestRoundRobinResolver_FailedAssignmentParksAfterRetries(t *testing.T) {
	repo := newMockAssignmentQueueRepository()
	repo.add(2)
	repo.assignees = []*secondary.AssigneeRecord{{ID: "AGT-001", Role: "AGENT", Active: true}}
	repo.assignErrFor["QUEUE-001"] = errors.New("assignee at capacity")
	r := newTestResolver(repo, 10, 2)

	res, err := r.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("ProcessQueue failed: %v", err)
	}
	if res.Processed != 1 || res.Remaining != 1 {
		t.Errorf("first pass = %+v, want {1 1}", res)
	}
	if repo.items["QUEUE-001"].Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", repo.items["QUEUE-001"].Attempts)
	}

	res, err = r.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("second ProcessQueue failed: %v", err)
	}
	if res.Processed != 0 || res.Remaining != 0 {
		t.Errorf("second pass = %+v, want {0 0}", res)
	}
	item := repo.items["QUEUE-001"]
	if item.Status != secondary.AssignmentStatusFailed {
		t.Errorf("Status = %q, want failed", item.Status)
	}
	if item.LastError != "assignee at capacity" {
		t.Errorf("LastError = %q", item.LastError)
	}
}
