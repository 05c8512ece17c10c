// Package kafka forwards persisted audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "stacia/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// message is the wire shape of an audit event on the topic.
type message struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Action    string    `json:"action"`
	Purpose   string    `json:"purpose,omitempty"`
	Business  string    `json:"business,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Sink publishes audit events, keyed by session (or run) so their events stay ordered.
type Sink struct {
	producer Producer
	topic    string
}

// NewSink creates a sink writing to topic.
func NewSink(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// NewClient dials the brokers with topic as the default produce topic.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("stacia-audit"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates the topic with broker defaults if it does not exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, -1, -1, nil, topic)
	if err == nil {
		err = resp.Err
	}
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("ensure topic %s: %w", topic, err)
	}
	return nil
}

func (s *Sink) Name() string {
	return "kafka:" + s.topic
}

// Publish encodes and produces a single event synchronously.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(message{
		ID:        event.ID.String(),
		Category:  string(event.Category),
		Timestamp: event.Timestamp,
		SessionID: event.SessionID,
		RunID:     event.RunID,
		Action:    event.Action,
		Purpose:   event.Purpose,
		Business:  event.Business,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(recordKey(event)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func recordKey(event audit.Event) string {
	if event.SessionID != "" {
		return event.SessionID
	}
	return event.RunID
}
