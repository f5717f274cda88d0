package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Envelope is the wire form of a domain event on the broker.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Time       time.Time   `json:"occurred_at"`
	TraceID    string      `json:"trace_id,omitempty"`
	Data       interface{} `json:"data"`
}

func Encode(event Event) ([]byte, error) {
	env := Envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		Time:       event.OccurredAt(),
		Data:       event.Payload(),
	}
	if traced, ok := event.(interface{ TraceIdentifier() string }); ok {
		env.TraceID = traced.TraceIdentifier()
	}
	return json.Marshal(env)
}

func (e BaseEvent) TraceIdentifier() string {
	return e.TraceID
}

// AMQPForwarder republishes domain events to a RabbitMQ topic exchange, using the
// event type as routing key.
type AMQPForwarder struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
	mu       sync.Mutex
}

func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPForwarder{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Register subscribes the forwarder to every domain event on bus.
func (f *AMQPForwarder) Register(bus *EventBus) {
	bus.SubscribeAll(f.Handle)
}

func (f *AMQPForwarder) Handle(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange,        // exchange
		event.EventType(), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID(),
			Type:         event.EventType(),
			Timestamp:    event.OccurredAt(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	f.logger.DebugContext(ctx, "event forwarded",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"exchange", f.exchange)
	return nil
}

func (f *AMQPForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.channel != nil {
		if err := f.channel.Close(); err != nil {
			f.logger.Warn("failed to close AMQP channel", "error", err)
		}
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
