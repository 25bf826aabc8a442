// Package kafka publishes escalation events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/slawatch/internal/ports/secondary"
)

// Config holds the broker and topic escalations are published to.
type Config struct {
	Broker string
	Topic  string
}

// messageWriter is the subset of *kafka.Writer the notifier needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EscalationNotifier implements secondary.EscalationNotifier over Kafka.
type EscalationNotifier struct {
	writer messageWriter
	topic  string
}

// escalationMessage is the JSON payload published for each new escalation.
type escalationMessage struct {
	EscalationID string `json:"escalation_id"`
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	EscalatedBy  string `json:"escalated_by"`
	EscalatedTo  string `json:"escalated_to"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// NewEscalationNotifier creates a notifier writing to cfg.Topic on cfg.Broker.
func NewEscalationNotifier(cfg Config) (*EscalationNotifier, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newEscalationNotifier(w, cfg.Topic), nil
}

func newEscalationNotifier(w messageWriter, topic string) *EscalationNotifier {
	return &EscalationNotifier{writer: w, topic: topic}
}

// NotifyEscalation publishes one message keyed by entity ID, so all
// escalations for an entity land on the same partition.
func (n *EscalationNotifier) NotifyEscalation(ctx context.Context, escalation *secondary.EscalationRecord) error {
	payload, err := json.Marshal(escalationMessage{
		EscalationID: escalation.ID,
		EntityType:   escalation.EntityType,
		EntityID:     escalation.EntityID,
		EscalatedBy:  escalation.EscalatedBy,
		EscalatedTo:  escalation.EscalatedTo,
		Reason:       escalation.Reason,
		Status:       escalation.Status,
		CreatedAt:    escalation.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode escalation %s: %w", escalation.ID, err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(escalation.EntityType + ":" + escalation.EntityID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "escalation_id", Value: []byte(escalation.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish escalation %s to %s: %w", escalation.ID, n.topic, err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (n *EscalationNotifier) Close() error {
	return n.writer.Close()
}

// Ensure EscalationNotifier implements the interface
var _ secondary.EscalationNotifier = (*EscalationNotifier)(nil)
