package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vocal-lineage/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// Event records who asked the service for what.
type Event struct {
	ID     string            `json:"id"`
	Actor  string            `json:"actor"`
	Role   string            `json:"role"`
	Action string            `json:"action"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	At     time.Time         `json:"at"`
}

func NewEvent(actor, role, action string, attrs map[string]string) Event {
	return Event{
		ID:     uuid.NewString(),
		Actor:  actor,
		Role:   role,
		Action: action,
		Attrs:  attrs,
		At:     time.Now().UTC(),
	}
}

// Topic is the routing key of the event.
func (e Event) Topic() string {
	return "audit." + e.Action
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// AMQPPublisher publishes events to the audit exchange. A channel is not
// safe for concurrent publishing, so calls are serialized.
type AMQPPublisher struct {
	mu sync.Mutex
	ch *amqp091.Channel
}

func NewAMQPPublisher(ch *amqp091.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := PublishTopic(ctx, p.ch, e.Topic(), data); err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}

// LogPublisher writes events to the log. It is used when no broker is
// configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	logger.Debug("[Audit] Event", "id", e.ID, "actor", e.Actor, "action", e.Action, "attrs", e.Attrs)
	return nil
}
