package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type memorySink struct {
	events map[string]Event
	err    error
}

func (s *memorySink) Record(ctx context.Context, e Event) error {
	if s.err != nil {
		return s.err
	}
	if s.events == nil {
		s.events = make(map[string]Event)
	}
	s.events[e.ID] = e
	return nil
}

func TestHandleAuditMessage(t *testing.T) {
	sink := &memorySink{}
	e := NewEvent("1", "admin", "path", map[string]string{"from": "Garcia"})
	body, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := HandleAuditMessage(context.Background(), sink, body); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := HandleAuditMessage(context.Background(), sink, body); err != nil {
		t.Fatalf("expected redelivery to succeed, got %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	if sink.events[e.ID].Attrs["from"] != "Garcia" {
		t.Fatalf("expected attrs to survive, got %v", sink.events[e.ID].Attrs)
	}
}

func TestHandleAuditMessageErrors(t *testing.T) {
	if err := HandleAuditMessage(context.Background(), &memorySink{}, []byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if err := HandleAuditMessage(context.Background(), &memorySink{}, []byte(`{"actor":"1"}`)); err == nil {
		t.Fatal("expected error for event without id")
	}

	body, _ := json.Marshal(NewEvent("1", "user", "counts", nil))
	sinkErr := errors.New("db down")
	err := HandleAuditMessage(context.Background(), &memorySink{err: sinkErr}, body)
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

type fakeAcker struct {
	acked, nacked, requeued bool
}

func (a *fakeAcker) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	return nil
}

type fakeChannel struct {
	key     string
	headers amqp091.Table
	err     error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	c.key, c.headers = key, msg.Headers
	return c.err
}

func TestHandleProcessingError(t *testing.T) {
	tests := []struct {
		name        string
		headers     amqp091.Table
		publishErr  error
		wantKey     string
		wantRetries int
		wantAck     bool
	}{
		{name: "first failure", headers: nil, wantKey: "audit_queue_retry", wantRetries: 1, wantAck: true},
		{name: "retried", headers: amqp091.Table{"x-retries": int32(3)}, wantKey: "audit_queue_retry", wantRetries: 4, wantAck: true},
		{name: "exhausted", headers: amqp091.Table{"x-retries": int32(MaxRetries)}, wantKey: "audit_queue_dlq", wantRetries: MaxRetries, wantAck: true},
		{name: "publish fails", headers: nil, publishErr: errors.New("closed"), wantKey: "audit_queue_retry", wantRetries: 1, wantAck: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acker := &fakeAcker{}
			ch := &fakeChannel{err: tt.publishErr}
			msg := amqp091.Delivery{Acknowledger: acker, Headers: tt.headers, Body: []byte("{}")}

			HandleProcessingError(context.Background(), ch, msg, AuditQueue)

			if ch.key != tt.wantKey {
				t.Fatalf("expected publish to %s, got %s", tt.wantKey, ch.key)
			}
			if got := Retries(ch.headers); got != tt.wantRetries {
				t.Fatalf("expected %d retries, got %d", tt.wantRetries, got)
			}
			if acker.acked != tt.wantAck {
				t.Fatalf("expected acked=%v", tt.wantAck)
			}
			if !tt.wantAck && !(acker.nacked && acker.requeued) {
				t.Fatal("expected a requeueing nack")
			}
		})
	}
}
