package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MessageHandler processes one delivery body
type MessageHandler func(ctx context.Context, body []byte) error

// permanentError marks messages that will never succeed and must not be requeued
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the consumer drops the message instead of requeueing it
func Permanent(err error) error {
	return permanentError{err: err}
}

// Consumer reads one queue with manual acknowledgement
type Consumer struct {
	conn        *Connection
	log         *zap.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer
func NewConsumer(conn *Connection, log *zap.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		log:         log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming blocks until ctx is done, handing each message to handler.
// Broker outages are retried with backoff for as long as ctx lives, so it
// only returns ctx.Err().
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	wait := newBackoff(time.Second, 30*time.Second)
	for {
		msgs, err := c.subscribe()
		if err == nil {
			wait.reset()
			c.log.Info("consumer started",
				zap.String("queue", c.queueName),
				zap.String("consumer", c.consumerTag),
				zap.Int("prefetch", c.prefetch))
			if c.drain(ctx, msgs, handler) {
				c.log.Info("consumer stopped", zap.String("queue", c.queueName))
				return ctx.Err()
			}
		}

		d := wait.next()
		if err != nil {
			c.log.Error("consumer subscribe failed, retrying",
				zap.String("queue", c.queueName), zap.Duration("wait", d), zap.Error(err))
		} else {
			c.log.Warn("consumer channel closed, reconnecting",
				zap.String("queue", c.queueName), zap.Duration("wait", d))
		}
		if err := sleepCtx(ctx, d); err != nil {
			c.log.Info("consumer stopped", zap.String("queue", c.queueName))
			return err
		}
	}
}

// subscribe registers the consumer on a live channel
func (c *Consumer) subscribe() (<-chan amqp091.Delivery, error) {
	var msgs <-chan amqp091.Delivery
	err := c.conn.withChannel(func(ch *amqp091.Channel) error {
		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
		var err error
		msgs, err = ch.Consume(
			c.queueName,   // queue
			c.consumerTag, // consumer
			false,         // auto-ack
			false,         // exclusive
			false,         // no-local
			false,         // no-wait
			nil,           // args
		)
		if err != nil {
			return fmt.Errorf("failed to register consumer: %w", err)
		}
		return nil
	})
	return msgs, err
}

// drain handles deliveries until msgs closes or ctx is done. It reports
// whether ctx ended the loop.
func (c *Consumer) drain(ctx context.Context, msgs <-chan amqp091.Delivery, handler MessageHandler) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case d, ok := <-msgs:
			if !ok {
				return false
			}
			c.processMessage(ctx, d, handler)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, d amqp091.Delivery, handler MessageHandler) {
	start := time.Now()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := handler(processingCtx, d.Body)
	fields := []zap.Field{
		zap.String("queue", c.queueName),
		zap.String("routing_key", d.RoutingKey),
		zap.Duration("duration", time.Since(start)),
		zap.Uint64("delivery_tag", d.DeliveryTag),
	}

	if err != nil {
		var perm permanentError
		requeue := !errors.As(err, &perm)
		c.log.Error("message processing failed", append(fields, zap.Bool("requeue", requeue), zap.Error(err))...)
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			c.log.Error("message nack failed", zap.Error(nackErr))
		}
		return
	}

	c.log.Debug("message processed", fields...)
	if ackErr := d.Ack(false); ackErr != nil {
		c.log.Error("message ack failed", zap.Error(ackErr))
	}
}
