package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/example/slawatch/internal/ports/secondary"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestEscalationNotifier_NotifyEscalation(t *testing.T) {
	w := &fakeWriter{}
	n := newEscalationNotifier(w, "sla.escalations")

	err := n.NotifyEscalation(context.Background(), &secondary.EscalationRecord{
		ID:          "ESC-001",
		EntityType:  "EVENT",
		EntityID:    "EVT-001",
		EscalatedBy: "SYSTEM",
		EscalatedTo: "HEAD",
		Reason:      "stuck in draft",
		Status:      "pending",
	})
	if err != nil {
		t.Fatalf("NotifyEscalation failed: %v", err)
	}

	if len(w.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.messages))
	}
	msg := w.messages[0]
	if string(msg.Key) != "EVENT:EVT-001" {
		t.Errorf("Key = %q, want EVENT:EVT-001", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "ESC-001" {
		t.Errorf("Headers = %v", msg.Headers)
	}

	var payload map[string]string
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["escalation_id"] != "ESC-001" || payload["escalated_to"] != "HEAD" {
		t.Errorf("payload = %v", payload)
	}
	if _, ok := payload["created_at"]; ok {
		t.Error("empty created_at should be omitted")
	}
}

func TestEscalationNotifier_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	n := newEscalationNotifier(w, "sla.escalations")

	err := n.NotifyEscalation(context.Background(), &secondary.EscalationRecord{ID: "ESC-001"})
	if !errors.Is(err, w.err) {
		t.Errorf("err = %v, want wrapped write error", err)
	}
}

func TestNewEscalationNotifier_RequiresBrokerAndTopic(t *testing.T) {
	if _, err := NewEscalationNotifier(Config{Topic: "t"}); err == nil {
		t.Error("expected error without broker")
	}
	if _, err := NewEscalationNotifier(Config{Broker: "localhost:9092"}); err == nil {
		t.Error("expected error without topic")
	}

	n, err := NewEscalationNotifier(Config{Broker: "localhost:9092", Topic: "sla.escalations"})
	if err != nil {
		t.Fatalf("NewEscalationNotifier failed: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
