// Package events publishes schedule lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/pkg/config"
)

// Event types.
const (
	TypeScheduleGenerated = "schedule.generated"
	TypeScheduleOptimized = "schedule.optimized"
	TypeEndDateApplied    = "batch.end_date_applied"
)

// Event is the JSON body placed on the queue.
type Event struct {
	Type       string         `json:"type"`
	BatchID    string         `json:"batch_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher writes events to a durable queue on the default exchange.
type AMQPPublisher struct {
	ch      channel
	queue   string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewAMQPPublisher wraps an open channel. The queue must already be declared.
func NewAMQPPublisher(ch channel, queue string, timeout time.Duration, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AMQPPublisher{ch: ch, queue: queue, timeout: timeout, logger: logger, now: time.Now}
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", zap.String("type", event.Type), zap.String("batch_id", event.BatchID))
	return nil
}

// Connection owns the broker connection behind an AMQPPublisher.
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to RabbitMQ, opens a channel and declares the events queue.
func Dial(cfg config.EventsConfig, logger *zap.Logger) (*Connection, *AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}
	return &Connection{conn: conn, ch: ch}, NewAMQPPublisher(ch, cfg.Queue, cfg.Timeout, logger), nil
}

// Close shuts the channel and connection.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	if err := c.ch.Close(); err != nil {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}
