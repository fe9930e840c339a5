// Package sink delivers roster changes to their final destination.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
)

// Sentinel errors for sinks.
var (
	ErrNoBrokers = errors.New("kafka sink needs at least one broker")
	ErrNoTopic   = errors.New("kafka sink needs a topic")
	ErrClosed    = errors.New("sink closed")
)

// LogSink writes each roster change as a structured log line.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(l logger.Logger) *LogSink {
	return &LogSink{logger: l}
}

// Deliver logs the change.
func (s *LogSink) Deliver(ctx context.Context, c model.RosterChange) error {
	s.logger.Info(ctx, "roster changed",
		logger.String("id", c.ID),
		logger.String("kind", string(c.Kind)),
		logger.String("activity", c.Activity),
		logger.String("email", c.Email),
		logger.Any("at", c.At),
	)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }

// MessageWriter is the part of *kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes roster changes as JSON, keyed by activity name so
// every change to one roster lands on the same partition in order.
type KafkaSink struct {
	topic  string
	writer MessageWriter

	mu     sync.Mutex
	closed bool
}

// NewKafkaSink builds a sink backed by a synchronous kafka.Writer.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, ErrNoTopic
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
		Async:        false,
	}
	return NewKafkaSinkWithWriter(topic, w), nil
}

// NewKafkaSinkWithWriter wraps an existing writer. The writer must already
// be bound to topic; topic is only used for error messages.
func NewKafkaSinkWithWriter(topic string, w MessageWriter) *KafkaSink {
	return &KafkaSink{topic: topic, writer: w}
}

// Deliver publishes one change.
func (s *KafkaSink) Deliver(ctx context.Context, c model.RosterChange) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode roster change %s: %w", c.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(c.Activity),
		Value: value,
		Time:  c.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(c.Kind)},
			{Key: "change_id", Value: []byte(c.ID)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
