package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func (e *Envelope) EventType() string     { return e.Type }
func (e *Envelope) EventID() string       { return e.ID }
func (e *Envelope) OccurredAt() time.Time { return e.Time }
func (e *Envelope) Payload() interface{}  { return e.Data }

// Decode parses a broker message produced by Encode.
func Decode(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, errors.New("decode envelope: missing type")
	}
	return &env, nil
}

// AMQPConsumer reads domain events back from the exchange the forwarder writes to.
type AMQPConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// DialAMQPConsumer binds queue to exchange for the given routing keys. An empty
// queue name declares a private queue that is deleted on disconnect.
func DialAMQPConsumer(url, exchange, queue string, bindingKeys []string, logger *slog.Logger) (*AMQPConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	fail := func(err error) (*AMQPConsumer, error) {
		channel.Close()
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("declare exchange: %w", err))
	}

	private := queue == ""
	q, err := channel.QueueDeclare(
		queue,    // name
		!private, // durable
		private,  // delete when unused
		private,  // exclusive
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fail(fmt.Errorf("declare queue: %w", err))
	}

	if len(bindingKeys) == 0 {
		bindingKeys = []string{"#"}
	}
	for _, key := range bindingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind queue to %q: %w", key, err))
		}
	}

	return &AMQPConsumer{conn: conn, channel: channel, queue: q.Name, logger: logger}, nil
}

// Run hands every delivery to handler until ctx is done. Messages that cannot be
// decoded or handled are rejected without requeue.
func (c *AMQPConsumer) Run(ctx context.Context, handler Handler) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("delivery channel closed")
			}
			c.deliver(ctx, d, handler)
		}
	}
}

func (c *AMQPConsumer) deliver(ctx context.Context, d amqp.Delivery, handler Handler) {
	env, err := Decode(d.Body)
	if err != nil {
		c.logger.Warn("dropping malformed event", "error", err, "message_id", d.MessageId)
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, env); err != nil {
		c.logger.Error("event handler failed", "error", err, "event_type", env.Type, "event_id", env.ID)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *AMQPConsumer) Close() error {
	if err := c.channel.Close(); err != nil {
		c.logger.Warn("failed to close AMQP channel", "error", err)
	}
	return c.conn.Close()
}
