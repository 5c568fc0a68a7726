package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vocal-lineage/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// MaxRetries is the number of redeliveries before a message is parked in the
// dead-letter queue.
const MaxRetries = 10

// AuditSink persists consumed audit events. Record must be idempotent on
// Event.ID since deliveries may repeat.
type AuditSink interface {
	Record(ctx context.Context, e Event) error
}

// HandleAuditMessage decodes one delivery body and records it.
func HandleAuditMessage(ctx context.Context, sink AuditSink, body []byte) error {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("failed to decode audit event: %w", err)
	}
	if e.ID == "" || e.Action == "" {
		return errors.New("audit event without id or action")
	}

	if err := sink.Record(ctx, e); err != nil {
		return fmt.Errorf("failed to record audit event %s: %w", e.ID, err)
	}
	logger.Debug("[Queue] Recorded audit event", "id", e.ID, "action", e.Action)
	return nil
}

// Retries reads the redelivery count of a message.
func Retries(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// channelPublisher is the publishing half of *amqp091.Channel.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// HandleProcessingError sends a failed delivery to the retry queue, or to
// the dead-letter queue once it has been retried MaxRetries times. The
// original delivery is acked once the copy is published and requeued
// otherwise.
func HandleProcessingError(ctx context.Context, ch channelPublisher, msg amqp091.Delivery, queueName string) {
	retries := Retries(msg.Headers)

	target := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if retries >= MaxRetries {
		target = queueName + "_dlq"
		logger.Info("[Queue] Sending message to DLQ", "dlq", target)
	} else {
		headers["x-retries"] = int32(retries + 1)
	}

	pubErr := ch.PublishWithContext(
		ctx,
		"",
		target,
		false,
		false,
		amqp091.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", pubErr)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
}
