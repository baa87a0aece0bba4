package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"blog_admin/internal/domain"
)

// Reloader refreshes a view after its collection changed elsewhere.
type Reloader interface {
	Load(ctx context.Context) error
}

// Consumer dispatches change events to the reloaders registered for their
// collection.
type Consumer struct {
	logger *slog.Logger

	mu        sync.RWMutex
	reloaders map[string][]Reloader
}

func NewConsumer(logger *slog.Logger) *Consumer {
	return &Consumer{
		logger:    logger.With("component", "consumer"),
		reloaders: make(map[string][]Reloader),
	}
}

// Register subscribes r to changes of collection.
func (c *Consumer) Register(collection string, r Reloader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloaders[collection] = append(c.reloaders[collection], r)
}

// Run handles deliveries until ctx is done or msgs is closed.
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	c.logger.Info("consumer started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("delivery channel closed")
				return nil
			}
			if err := c.Handle(ctx, msg.Body); err != nil {
				c.logger.Error("handle change", "error", err)
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

// Handle decodes one change event and reloads every matching view. A
// reload failure does not stop the others.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var change domain.Change
	if err := json.Unmarshal(body, &change); err != nil {
		return fmt.Errorf("decode change: %w", err)
	}

	c.mu.RLock()
	targets := append([]Reloader(nil), c.reloaders[change.Collection]...)
	c.mu.RUnlock()

	c.logger.Debug("change received",
		"collection", change.Collection,
		"action", change.Action,
		"id", change.ID,
		"targets", len(targets),
	)

	for _, r := range targets {
		if err := r.Load(ctx); err != nil {
			c.logger.Warn("reload after change", "collection", change.Collection, "error", err)
		}
	}
	return nil
}
