// Package kafka streams audit events to a Kafka topic for downstream
// compliance and SIEM consumers.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	audit "sendgate/pkg/platform/audit"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic receives audit events when no topic is configured.
const DefaultTopic = "sendgate.audit"

// Sink implements audit.Store by producing each event synchronously.
type Sink struct {
	client *kgo.Client
	topic  string
}

// message is the wire payload. Field names are stable for consumers.
type message struct {
	Category       string `json:"category"`
	Timestamp      string `json:"timestamp"`
	AccountID      string `json:"account_id,omitempty"`
	RecipientID    string `json:"recipient_id,omitempty"`
	Action         string `json:"action"`
	Decision       string `json:"decision,omitempty"`
	Reason         string `json:"reason,omitempty"`
	KeyFingerprint string `json:"key_fingerprint,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// New connects a producer to the given seed brokers.
func New(brokers []string, topic string) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// EnsureTopic creates the audit topic if it does not exist yet.
func (s *Sink) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(s.client)
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Append produces the event keyed by recipient so a recipient's events stay
// ordered within one partition.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	payload, err := json.Marshal(message{
		Category:       string(audit.AuditEvent(event.Action).Category()),
		Timestamp:      timestamp.UTC().Format(time.RFC3339Nano),
		AccountID:      event.AccountID.String(),
		RecipientID:    event.RecipientID.String(),
		Action:         event.Action,
		Decision:       event.Decision,
		Reason:         event.Reason,
		KeyFingerprint: event.KeyFingerprint,
		RequestID:      event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic:     s.topic,
		Key:       []byte(event.RecipientID),
		Value:     payload,
		Timestamp: timestamp,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and closes the client.
func (s *Sink) Close() {
	s.client.Close()
}
