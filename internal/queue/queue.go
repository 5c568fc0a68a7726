package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/vocal-lineage/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// AuditExchange is the topic exchange audit events are published to.
const AuditExchange = "lineage_audit"

// AuditQueue collects every audit topic for the worker. Failed deliveries
// wait in AuditQueue+"_retry" and end up in AuditQueue+"_dlq".
const AuditQueue = "audit_queue"

type ConnParams struct {
	User     string
	Password string
	Host     string
	Port     string
}

func (p ConnParams) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		p.User,
		p.Password,
		p.Host,
		p.Port,
	)
}

func Init(params ConnParams) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(params.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// SetupExchange declares the audit exchange and a durable queue bound to
// every audit topic.
func SetupExchange(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		AuditExchange, // name
		"topic",       // type
		true,          // durable
		false,         // autoDelete
		false,         // internal
		false,         // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("exchange declare failed: %w", err)
	}

	q, err := ch.QueueDeclare(
		AuditQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("queue declare failed: %w", err)
	}

	if _, err := ch.QueueDeclare(AuditQueue+"_dlq", true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		AuditQueue+"_retry",
		true,
		false,
		false,
		false,
		amqp091.Table{
			"x-message-ttl":             int32(10000),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": AuditQueue,
		},
	)
	if err != nil {
		return fmt.Errorf("queue declare failed: %w", err)
	}

	if err := ch.QueueBind(q.Name, "audit.#", AuditExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind failed: %w", err)
	}

	logger.Debug("[Queue] Audit exchange ready", "exchange", AuditExchange, "queue", q.Name)
	return nil
}

func PublishTopic(ctx context.Context, ch *amqp091.Channel, topic string, data []byte) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.PublishWithContext(
		ctx,
		AuditExchange,
		topic,
		false,
		false,
		publishing,
	)
}
