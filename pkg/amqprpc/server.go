package amqprpc

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/storemesh/storemesh/pkg/slogx"
)

// Handler produces the reply body for a request body. Returning an error
// suppresses the reply entirely, leaving the caller to its timeout; use it
// for internal failures, not for negative answers.
type Handler func(ctx context.Context, body []byte) ([]byte, error)

// Server consumes RPC requests from a queue bound to a direct exchange and
// publishes each handler result back to the requester's reply queue.
type Server struct {
	ch      *amqp.Channel
	queue   string
	handler Handler
}

// NewServer opens a channel on conn, declares the direct exchange and the
// request queue, and binds them under routingKey.
func NewServer(conn *amqp.Connection, exchange, routingKey, queue string, handler Handler) (*Server, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("bind queue %s: %w", queue, err)
	}

	return &Server{ch: ch, queue: queue, handler: handler}, nil
}

// Run consumes requests until the context is cancelled or the channel dies.
func (s *Server) Run(ctx context.Context) error {
	deliveries, err := s.ch.Consume(s.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.queue, err)
	}

	log := slogx.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return s.ch.Close()
		case d, ok := <-deliveries:
			if !ok {
				return ErrClientClosed
			}
			s.serve(ctx, log, d)
		}
	}
}

func (s *Server) serve(ctx context.Context, log *slog.Logger, d amqp.Delivery) {
	reply, err := s.handler(ctx, d.Body)
	if err != nil {
		log.Error("rpc handler failed", "err", err)
		// Ack anyway; redelivering won't help and the caller times out.
		if err := d.Ack(false); err != nil {
			log.Warn("rpc ack failed", "err", err)
		}
		return
	}

	if d.ReplyTo != "" {
		err := s.ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, amqp.Publishing{
			ContentType:   "application/octet-stream",
			CorrelationId: d.CorrelationId,
			Body:          reply,
		})
		if err != nil {
			log.Warn("rpc reply publish failed", "err", err)
		}
	}

	if err := d.Ack(false); err != nil {
		log.Warn("rpc ack failed", "err", err)
	}
}
