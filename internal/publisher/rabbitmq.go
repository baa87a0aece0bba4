package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"blog_admin/internal/domain"
)

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	queue      string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
	// Exclusive gives this connection its own server-named queue that is
	// removed on disconnect, so every watcher sees every change. QueueName
	// is ignored when set.
	Exclusive bool
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queue, err := declareTopology(ch, cfg)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", queue,
		"exclusive", cfg.Exclusive,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		queue:      queue,
		logger:     logger,
	}, nil
}

// declareTopology declares the change exchange and binds the consumer queue
// to it, returning the queue name.
func declareTopology(ch *amqp.Channel, cfg Config) (string, error) {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	name, durable, autoDelete, exclusive := cfg.QueueName, true, false, false
	if cfg.Exclusive {
		name, durable, autoDelete, exclusive = "", false, true, true
	}

	q, err := ch.QueueDeclare(name, durable, autoDelete, exclusive, false, nil)
	if err != nil {
		return "", fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return "", fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	return q.Name, nil
}

// EventType names the event the way listeners subscribe to it, e.g.
// "members:changed".
func EventType(collection string) string {
	return collection + ":changed"
}

// Publish sends a persistent JSON change event.
func (r *RabbitMQ) Publish(ctx context.Context, change domain.Change) error {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         EventType(change.Collection),
			MessageId:    string(change.ID),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published change",
		"collection", change.Collection,
		"action", change.Action,
		"id", change.ID,
	)

	return nil
}

// Deliveries starts consuming the bound queue. The channel is closed when the
// connection goes away.
func (r *RabbitMQ) Deliveries(consumer string) (<-chan amqp.Delivery, error) {
	msgs, err := r.channel.Consume(r.queue, consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", r.queue, err)
	}
	return msgs, nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
