package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"petcare/internal/core"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// Handlers receive decoded messages. A nil handler acknowledges and drops
// messages of its type.
type Handlers struct {
	ActivityRecorded func(ctx context.Context, a core.Activity) error
	WalkReminder     func(ctx context.Context, r ReminderPayload) error
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	err = c.channel.QueueBind(
		c.queueName,
		c.queueName,
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// ensureChannel reconnects when the connection was lost. Caller holds mu.
func (c *Client) ensureChannel() error {
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return nil
	}
	c.closeLocked()
	return c.connectLocked()
}

// PublishActivityRecorded announces a newly stored activity.
func (c *Client) PublishActivityRecorded(ctx context.Context, a core.Activity) error {
	if err := c.publish(ctx, NewActivityRecordedMessage(a)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published activity message",
		"id", a.ID,
		"pet_name", a.PetName,
		"type", a.Type,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishWalkReminder announces that a pet still needs its walk.
func (c *Client) PublishWalkReminder(ctx context.Context, r core.WalkReminder) error {
	if err := c.publish(ctx, NewWalkReminderMessage(r)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published walk reminder message",
		"pet_name", r.PetName,
		"date", r.Date.String(),
		"exchange", c.exchangeName)
	return nil
}

func (c *Client) publish(ctx context.Context, msg *Message) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msg.Type, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureChannel(); err != nil {
		c.recordFailure()
		return fmt.Errorf("reconnect: %w", err)
	}

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         string(msg.Type),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.closeLocked()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	return nil
}

// Consume dispatches queue messages to h until ctx is done. Lost
// connections are re-established with exponential backoff.
func (c *Client) Consume(ctx context.Context, h Handlers) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, h, func() { attempt = 0 })
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP consumer lost connection, retrying",
			"error", err,
			"attempt", attempt,
			"backoff", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		c.mu.Lock()
		c.closeLocked()
		err = c.connectLocked()
		c.mu.Unlock()
		if err != nil {
			slog.ErrorContext(ctx, "AMQP reconnect failed", "error", err)
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, h Handlers, onStart func()) error {
	c.mu.Lock()
	if c.channel == nil || c.channel.IsClosed() {
		c.mu.Unlock()
		return errors.New("channel closed")
	}
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	onStart()
	slog.InfoContext(ctx, "Started consuming ledger messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handleDelivery(ctx, delivery, h)
		}
	}
}

// handleDelivery decodes, dispatches and settles one delivery. Malformed
// messages are dropped; handler failures are requeued.
func handleDelivery(ctx context.Context, delivery amqp091.Delivery, h Handlers) {
	msg, err := MessageFromJSON(delivery.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
		_ = delivery.Nack(false, false)
		return
	}

	if err := dispatch(ctx, msg, h); err != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			"error", err,
			"type", msg.Type)
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
	slog.DebugContext(ctx, "Processed message", "type", msg.Type)
}

func dispatch(ctx context.Context, msg *Message, h Handlers) error {
	switch msg.Type {
	case TypeActivityRecorded:
		if h.ActivityRecorded == nil {
			return nil
		}
		return h.ActivityRecorded(ctx, msg.Activity.ToActivity())
	case TypeWalkReminder:
		if h.WalkReminder == nil {
			return nil
		}
		return h.WalkReminder(ctx, *msg.Reminder)
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

// recordFailure is called with mu held or from tests.
func (c *Client) recordFailure() {
	c.lastFailure = time.Now()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"channel closed",
		"message channel closed",
		"eof",
		"broken pipe",
		"use of closed network connection",
		"connection reset",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
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
