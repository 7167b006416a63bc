// Package amqprpc implements request/reply messaging over RabbitMQ using the
// broker's direct reply-to pseudo-queue, so callers need no reply queues of
// their own.
package amqprpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/storemesh/storemesh/pkg/idx"
)

const replyToQueue = "amq.rabbitmq.reply-to"

var (
	// ErrClientClosed is returned for calls made after Close, or in flight
	// when the underlying channel dies.
	ErrClientClosed = errors.New("amqprpc: client closed")
)

// Client issues RPC requests over an AMQP direct exchange and waits for the
// correlated reply. Safe for concurrent use.
type Client struct {
	ch         *amqp.Channel
	exchange   string
	routingKey string

	mu      sync.Mutex
	pending map[string]chan []byte
	closed  bool
}

// NewClient opens a channel on conn and starts consuming from the direct
// reply-to queue. The exchange is expected to exist; the responder declares it.
func NewClient(conn *amqp.Connection, exchange, routingKey string) (*Client, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Direct reply-to requires a no-ack consumer on the pseudo-queue before
	// any request is published.
	deliveries, err := ch.Consume(replyToQueue, "", true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume %s: %w", replyToQueue, err)
	}

	c := &Client{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		pending:    make(map[string]chan []byte),
	}

	go c.dispatch(deliveries)
	return c, nil
}

// dispatch routes replies to their waiting callers. When the delivery stream
// closes every in-flight call fails with ErrClientClosed.
func (c *Client) dispatch(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		c.mu.Lock()
		waiter, ok := c.pending[d.CorrelationId]
		if ok {
			delete(c.pending, d.CorrelationId)
		}
		c.mu.Unlock()

		if ok {
			waiter <- d.Body
		}
	}

	c.mu.Lock()
	c.closed = true
	for id, waiter := range c.pending {
		close(waiter)
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

// Call publishes body as an RPC request and blocks until the correlated reply
// arrives, the context expires, or the client is closed.
func (c *Client) Call(ctx context.Context, body []byte) ([]byte, error) {
	corrID := idx.New().String()
	waiter := make(chan []byte, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	c.pending[corrID] = waiter
	c.mu.Unlock()

	err := c.ch.PublishWithContext(ctx, c.exchange, c.routingKey, false, false, amqp.Publishing{
		ContentType:   "application/octet-stream",
		CorrelationId: corrID,
		ReplyTo:       replyToQueue,
		Body:          body,
	})
	if err != nil {
		c.forget(corrID)
		return nil, fmt.Errorf("publish request: %w", err)
	}

	select {
	case reply, ok := <-waiter:
		if !ok {
			return nil, ErrClientClosed
		}
		return reply, nil
	case <-ctx.Done():
		c.forget(corrID)
		return nil, ctx.Err()
	}
}

func (c *Client) forget(corrID string) {
	c.mu.Lock()
	delete(c.pending, corrID)
	c.mu.Unlock()
}

// Close tears down the channel. In-flight calls fail with ErrClientClosed.
func (c *Client) Close() error {
	return c.ch.Close()
}
