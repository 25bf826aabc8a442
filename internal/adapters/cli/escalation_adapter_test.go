package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/slawatch/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockSLAMonitorService implements primary.SLAMonitorService for testing
type mockSLAMonitorService struct {
	report     *primary.SweepReport
	resolveFn  func(ctx context.Context, req primary.ResolveEscalationRequest) (*primary.Escalation, error)
	history    []*primary.Escalation
	listFn     func(ctx context.Context, filters primary.EscalationFilters) ([]*primary.Escalation, error)
	getFn      func(ctx context.Context, id string) (*primary.Escalation, error)
	lastFilter primary.EscalationFilters
}

func (m *mockSLAMonitorService) CheckAutoEscalation(ctx context.Context, now time.Time) *primary.SweepReport {
	if m.report != nil {
		return m.report
	}
	return &primary.SweepReport{SweepID: "sweep-1", StartedAt: now}
}

func (m *mockSLAMonitorService) ResolveEscalation(ctx context.Context, req primary.ResolveEscalationRequest) (*primary.Escalation, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, req)
	}
	return &primary.Escalation{ID: req.EscalationID, Status: primary.EscalationStatusResolved, ResolvedBy: req.ResolvedBy, ResolvedAt: "2026-03-10T12:00:00Z"}, nil
}

func (m *mockSLAMonitorService) GetEscalationHistory(ctx context.Context, entityType, entityID string) []*primary.Escalation {
	if m.history == nil {
		return []*primary.Escalation{}
	}
	return m.history
}

func (m *mockSLAMonitorService) GetEscalation(ctx context.Context, id string) (*primary.Escalation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &primary.Escalation{ID: id, EntityType: "EVENT", EntityID: "EVT-001", Status: primary.EscalationStatusPending, EscalatedBy: "SYSTEM", EscalatedTo: "HEAD"}, nil
}

func (m *mockSLAMonitorService) ListEscalations(ctx context.Context, filters primary.EscalationFilters) ([]*primary.Escalation, error) {
	m.lastFilter = filters
	if m.listFn != nil {
		return m.listFn(ctx, filters)
	}
	return []*primary.Escalation{}, nil
}

func TestEscalationAdapter_Check(t *testing.T) {
	mock := &mockSLAMonitorService{report: &primary.SweepReport{
		SweepID:    "sweep-42",
		Candidates: 3,
		Escalated:  1,
		Skipped:    1,
		Created:    []string{"ESC-007"},
		Failures: []primary.CandidateFailure{
			{Class: "event_draft", EntityType: "EVENT", EntityID: "EVT-009", Err: errors.New("disk full")},
		},
	}}
	var buf bytes.Buffer
	adapter := NewEscalationAdapter(mock, &buf)

	report := adapter.Check(context.Background(), time.Now())

	if report.SweepID != "sweep-42" {
		t.Errorf("SweepID = %q", report.SweepID)
	}
	out := buf.String()
	for _, want := range []string{"Sweep sweep-42", "candidates: 3", "Created escalation ESC-007", "EVENT EVT-009: disk full", "failed:     1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEscalationAdapter_Resolve(t *testing.T) {
	var gotReq primary.ResolveEscalationRequest
	mock := &mockSLAMonitorService{resolveFn: func(ctx context.Context, req primary.ResolveEscalationRequest) (*primary.Escalation, error) {
		gotReq = req
		return &primary.Escalation{ID: req.EscalationID, ResolvedBy: req.ResolvedBy, ResolvedAt: "2026-03-10T12:00:00Z"}, nil
	}}
	var buf bytes.Buffer
	adapter := NewEscalationAdapter(mock, &buf)

	if err := adapter.Resolve(context.Background(), "ESC-001", "head-1", "published"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if gotReq.EscalationID != "ESC-001" || gotReq.ResolvedBy != "head-1" || gotReq.Resolution != "published" {
		t.Errorf("request = %+v", gotReq)
	}
	if !strings.Contains(buf.String(), "Escalation ESC-001 resolved by head-1") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestEscalationAdapter_Resolve_ServiceError(t *testing.T) {
	mock := &mockSLAMonitorService{resolveFn: func(ctx context.Context, req primary.ResolveEscalationRequest) (*primary.Escalation, error) {
		return nil, primary.ErrNotFound
	}}
	var buf bytes.Buffer
	adapter := NewEscalationAdapter(mock, &buf)

	err := adapter.Resolve(context.Background(), "ESC-404", "head-1", "x")
	if !errors.Is(err, primary.ErrNotFound) {
		t.Errorf("err = %v, want wrapped ErrNotFound", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on error, got %q", buf.String())
	}
}

func TestEscalationAdapter_History(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		adapter := NewEscalationAdapter(&mockSLAMonitorService{}, &buf)
		if err := adapter.History(context.Background(), "EVENT", "EVT-001"); err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if !strings.Contains(buf.String(), "No escalations for EVENT EVT-001") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		mock := &mockSLAMonitorService{history: []*primary.Escalation{
			{ID: "ESC-002", EntityType: "EVENT", EntityID: "EVT-001", Status: "pending", EscalatedTo: "HEAD"},
			{ID: "ESC-001", EntityType: "EVENT", EntityID: "EVT-001", Status: "resolved", EscalatedTo: "HEAD", ResolvedBy: "head-1"},
		}}
		var buf bytes.Buffer
		adapter := NewEscalationAdapter(mock, &buf)
		if err := adapter.History(context.Background(), "EVENT", "EVT-001"); err != nil {
			t.Fatalf("History failed: %v", err)
		}
		out := buf.String()
		if strings.Index(out, "ESC-002") > strings.Index(out, "ESC-001") {
			t.Error("history should keep newest-first order")
		}
		if !strings.Contains(out, "head-1") {
			t.Errorf("output missing resolver: %s", out)
		}
	})
}

func TestEscalationAdapter_List(t *testing.T) {
	mock := &mockSLAMonitorService{}
	var buf bytes.Buffer
	adapter := NewEscalationAdapter(mock, &buf)

	if err := adapter.List(context.Background(), primary.EscalationFilters{Status: "pending"}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if mock.lastFilter.Status != "pending" {
		t.Errorf("filter = %+v", mock.lastFilter)
	}
	if !strings.Contains(buf.String(), "No escalations found.") {
		t.Errorf("output = %q", buf.String())
	}

	mock.listFn = func(ctx context.Context, filters primary.EscalationFilters) ([]*primary.Escalation, error) {
		return nil, primary.ErrCollaborator
	}
	if err := adapter.List(context.Background(), primary.EscalationFilters{}); !errors.Is(err, primary.ErrCollaborator) {
		t.Errorf("err = %v, want ErrCollaborator", err)
	}
}

func TestEscalationAdapter_Show(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewEscalationAdapter(&mockSLAMonitorService{}, &buf)

	esc, err := adapter.Show(context.Background(), "ESC-001")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if esc.ID != "ESC-001" {
		t.Errorf("ID = %q", esc.ID)
	}
	out := buf.String()
	for _, want := range []string{"Escalation: ESC-001", "Entity: EVENT EVT-001", "Status: pending", "Escalated: SYSTEM -> HEAD"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Resolved") {
		t.Error("pending escalation should not print resolution fields")
	}
}
