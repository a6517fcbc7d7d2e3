package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sangkips/tableside-api/internal/domain/event"
	"go.uber.org/zap"
)

// Publisher sends domain events to the topic exchange, routed by event type
type Publisher struct {
	conn     *Connection
	exchange string
	log      *zap.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(conn *Connection, exchange string, log *zap.Logger) *Publisher {
	return &Publisher{conn: conn, exchange: exchange, log: log}
}

// Publish implements event.Publisher
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    time.Now(),
		Type:         string(e.Type),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.withChannel(func(ch *amqp091.Channel) error {
		return ch.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, publishing)
	})
	if err != nil {
		p.log.Error("event publish failed",
			zap.String("exchange", p.exchange),
			zap.String("routing_key", string(e.Type)),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug("event published",
		zap.String("routing_key", string(e.Type)),
		zap.String("aggregate_id", e.AggregateID.String()),
		zap.Int("size", len(body)))
	return nil
}
