package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vocal-lineage/backend/internal/queue"
	"github.com/vocal-lineage/backend/internal/storage"
	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
)

// The worker drains the audit queue into Postgres.
func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnvString("LOG_FORMAT", "text") == "json",
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// Init pgx client
	dbURL := util.GetEnv("DATABASE_URL")
	err := util.RetryErrWithContext(ctx, 10, util.Backoff{Initial: time.Second, Max: 10 * time.Second},
		func(context.Context) error {
			return storage.Migrate(dbURL)
		},
	)
	if err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}
	pgConn, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	sink := storage.NewPostgresAuditLog(pgConn)

	// Init rabbitmq
	conn, err := util.RetryWithContext(ctx, 10, util.Backoff{Initial: time.Second, Max: 10 * time.Second},
		func(context.Context) (*amqp.Connection, error) {
			return queue.Init(queue.ConnParams{
				User:     util.GetEnvString("RABBITMQ_USER", "guest"),
				Password: util.GetEnvString("RABBITMQ_PASSWORD", "guest"),
				Host:     util.GetEnvString("RABBITMQ_HOST", "localhost"),
				Port:     util.GetEnvString("RABBITMQ_PORT", "5672"),
			})
		},
	)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupExchange(ch); err != nil {
		logger.Fatal("Failed to set up audit exchange", "err", err)
	}

	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.Consume(
		queue.AuditQueue,
		"audit_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.AuditQueue, "err", err)
	}

	logger.Info("Listening for audit events")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.AuditQueue)
				return
			}

			if err := queue.HandleAuditMessage(ctx, sink, msg.Body); err != nil {
				logger.Error("Error processing message", "queue", queue.AuditQueue, "err", err)
				queue.HandleProcessingError(ctx, ch, msg, queue.AuditQueue)
				continue
			}
			if err := msg.Ack(false); err != nil {
				logger.Error("Failed to ack message", "err", err)
			}
		}
	}
}
