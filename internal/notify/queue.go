package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
)

// ── publisher ──

const (
	defaultDialTimeout = 5 * time.Second
	defaultBufferSize  = 256
	publishTimeout     = 5 * time.Second
)

// QueueNotifier publishes messages to a durable RabbitMQ queue from a single
// background goroutine over one long-lived connection; a Consumer performs
// the delivery. Notify never waits on the broker. A message that cannot be
// buffered or published falls back to direct delivery.
type QueueNotifier struct {
	url         string
	queue       string
	dialTimeout time.Duration
	fallback    *DirectNotifier
	logger      *zap.Logger

	mu      sync.RWMutex
	closed  bool
	pending chan mail.Message
	done    chan struct{}

	// owned by the publisher goroutine
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewQueueNotifier creates a QueueNotifier and starts its publisher.
func NewQueueNotifier(cfg *config.QueueConfig, fallback *DirectNotifier, logger *zap.Logger) *QueueNotifier {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	n := &QueueNotifier{
		url:         cfg.URL,
		queue:       cfg.Name,
		dialTimeout: dialTimeout,
		fallback:    fallback,
		logger:      logger,
		pending:     make(chan mail.Message, size),
		done:        make(chan struct{}),
	}
	go n.run()
	return n
}

// Notify queues msg for publishing and returns immediately.
func (n *QueueNotifier) Notify(ctx context.Context, msg mail.Message) {
	if len(msg.To) == 0 {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.fallback.Notify(ctx, msg)
		return
	}
	select {
	case n.pending <- msg:
	default:
		n.logger.Warn("notification buffer full, sending directly", zap.String("queue", n.queue))
		n.fallback.Notify(ctx, msg)
	}
}

func (n *QueueNotifier) run() {
	defer close(n.done)
	for msg := range n.pending {
		if err := n.publish(msg); err != nil {
			n.logger.Warn("notification publish failed, sending directly",
				zap.String("queue", n.queue),
				zap.Error(err),
			)
			n.reset()
			n.fallback.Notify(context.Background(), msg)
		}
	}
	n.reset()
}

// channel returns the open channel, dialing and declaring the queue when
// there is none.
func (n *QueueNotifier) channel() (*amqp.Channel, error) {
	if n.ch != nil && !n.ch.IsClosed() {
		return n.ch, nil
	}
	n.reset()

	conn, err := amqp.DialConfig(n.url, dialConfig(n.dialTimeout))
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	n.conn, n.ch = conn, ch
	return ch, nil
}

// dialConfig bounds both the TCP connect and the AMQP handshake.
func dialConfig(timeout time.Duration) amqp.Config {
	return amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	}
}

func (n *QueueNotifier) reset() {
	if n.conn != nil {
		_ = n.conn.Close()
	}
	n.conn, n.ch = nil, nil
}

func (n *QueueNotifier) publish(msg mail.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := n.channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Close drains the buffer, closes the broker connection and waits for any
// fallback sends.
func (n *QueueNotifier) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.pending)
	}
	n.mu.Unlock()

	<-n.done
	return n.fallback.Close()
}

// ── consumer ──

// Consumer drains the notification queue into a mail.Sender.
type Consumer struct {
	url         string
	queue       string
	dialTimeout time.Duration
	sender      mail.Sender
	logger      *zap.Logger
}

// NewConsumer creates a Consumer.
func NewConsumer(cfg *config.QueueConfig, sender mail.Sender, logger *zap.Logger) *Consumer {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &Consumer{url: cfg.URL, queue: cfg.Name, dialTimeout: dialTimeout, sender: sender, logger: logger}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff (capped at 30s) when the broker goes away.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.DialConfig(c.url, dialConfig(c.dialTimeout))
		if err != nil {
			c.logger.Warn("notification consumer dial failed",
				zap.Duration("retry_in", backoff), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("notification consumer stopped, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.Warn("notification consumer qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("notification consumer started", zap.String("queue", c.queue))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.logger.Warn("notification delivery failed", zap.Error(err))
				// no requeue: delivery failures are not retried
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var msg mail.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return c.sender.Send(sendCtx, msg)
}
