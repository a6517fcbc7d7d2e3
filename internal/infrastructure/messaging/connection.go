package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sangkips/tableside-api/internal/config"
	"go.uber.org/zap"
)

// Connection wraps a RabbitMQ connection and channel with reconnection.
// The channel is shared, so every use goes through the mutex.
type Connection struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	cfg     config.RabbitMQConfig
	log     *zap.Logger
}

// New dials RabbitMQ and declares the topology, retrying a few times
func New(cfg config.RabbitMQConfig, log *zap.Logger) (*Connection, error) {
	c := &Connection{cfg: cfg, log: log}
	if err := c.connect(context.Background(), 5); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

// connect dials until it succeeds, attempts run out or ctx is done.
// The backoff wait happens without holding the mutex.
func (c *Connection) connect(ctx context.Context, attempts int) error {
	wait := newBackoff(2*time.Second, 30*time.Second)
	var err error
	for i := 0; i < attempts; i++ {
		c.mu.Lock()
		err = c.ensure()
		c.mu.Unlock()
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		d := wait.next()
		c.log.Warn("rabbitmq connection failed, retrying", zap.Duration("wait", d), zap.Error(err))
		if sleepErr := sleepCtx(ctx, d); sleepErr != nil {
			return sleepErr
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

// ensure reopens whatever the broker dropped: the connection, the channel or
// both. It makes a single attempt and never sleeps. c.mu must be held.
func (c *Connection) ensure() error {
	if c.conn == nil || c.conn.IsClosed() {
		c.close()
		conn, err := amqp091.Dial(c.cfg.URL)
		if err != nil {
			return fmt.Errorf("dial: %w", err)
		}
		c.conn = conn
	}
	if c.channel != nil && !c.channel.IsClosed() {
		return nil
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	c.channel = ch
	if err := c.setupTopology(); err != nil {
		c.log.Error("rabbitmq topology setup failed", zap.Error(err))
		ch.Close()
		c.channel = nil
		return err
	}
	return nil
}

// setupTopology declares the events exchange and the payments queue bound to it
func (c *Connection) setupTopology() error {
	err := c.channel.ExchangeDeclare(
		c.cfg.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", c.cfg.Exchange, err)
	}

	_, err = c.channel.QueueDeclare(
		c.cfg.PaymentsQueue, // name
		true,                // durable
		false,               // delete when unused
		false,               // exclusive
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.cfg.PaymentsQueue, err)
	}

	err = c.channel.QueueBind(
		c.cfg.PaymentsQueue, // queue name
		"payment.*",         // provider events are routed as payment.<status>
		c.cfg.Exchange,      // exchange
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", c.cfg.PaymentsQueue, err)
	}

	return nil
}

// withChannel runs fn with the live channel, reopening it first if the
// broker closed it. A failed reopen is returned at once; callers that must
// keep going retry with their own backoff.
func (c *Connection) withChannel(fn func(ch *amqp091.Channel) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensure(); err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}
	return fn(c.channel)
}

// Close closes the channel and connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}
