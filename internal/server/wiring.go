package server

import (
	"context"
	"fmt"
	"time"

	"github.com/vocal-lineage/backend/internal/queue"
	"github.com/vocal-lineage/backend/internal/storage"
	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/snapshot"
	"github.com/vocal-lineage/backend/pkg/store"
	"github.com/vocal-lineage/backend/pkg/store/memory"
	neo4jstore "github.com/vocal-lineage/backend/pkg/store/neo4j"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// openGraphStore connects the adapter named by STORE_ADAPTER.
func openGraphStore(ctx context.Context) (store.GraphStore, error) {
	switch adapter := util.GetEnvString("STORE_ADAPTER", "neo4j"); adapter {
	case "memory":
		seed := util.GetEnv("STORE_SEED_FILE")
		if seed == "" {
			logger.Warn("STORE_SEED_FILE not set, starting with an empty graph")
			return memory.New(), nil
		}
		logger.Info("Loading graph seed", "file", seed)
		s, err := memory.LoadFile(seed)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "neo4j":
		s, err := neo4jstore.Connect(ctx, neo4jstore.Config{
			URI:                   util.GetEnvString("NEO4J_URI", "neo4j://localhost:7687"),
			Username:              util.GetEnv("NEO4J_USER"),
			Password:              util.GetEnv("NEO4J_PASSWORD"),
			Database:              util.GetEnv("NEO4J_DATABASE"),
			MaxConnectionPoolSize: util.GetEnvInt("NEO4J_POOL_SIZE", 50),
			ConnectionTimeout:     util.GetEnvDuration("NEO4J_CONNECT_TIMEOUT", 30*time.Second),
			ConnectRetries:        util.GetEnvInt("NEO4J_CONNECT_RETRIES", 5),
			CandidateTTL:          util.GetEnvDuration("NEO4J_CANDIDATE_TTL", neo4jstore.DefaultCandidateTTL),
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORE_ADAPTER %q", adapter)
	}
}

// openSnapshots opens the store named by SNAPSHOT_ADAPTER. The returned
// func releases its resources.
func openSnapshots(ctx context.Context) (snapshot.Store, func(), error) {
	switch adapter := util.GetEnvString("SNAPSHOT_ADAPTER", "memory"); adapter {
	case "postgres":
		dbURL := util.GetEnv("DATABASE_URL")
		err := util.RetryErrWithContext(ctx, 5, util.Backoff{Initial: time.Second, Max: 10 * time.Second},
			func(context.Context) error {
				return storage.Migrate(dbURL)
			},
		)
		if err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return storage.NewPostgresSnapshots(pool), pool.Close, nil
	case "s3":
		client, err := storage.NewS3Client(ctx, storage.S3Params{
			Region:    util.GetEnvString("AWS_REGION", "us-east-1"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT_URL"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY_ID"),
			SecretKey: util.GetEnv("AWS_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewS3Snapshots(client, util.GetEnv("AWS_BUCKET")), func() {}, nil
	case "memory":
		logger.Warn("Snapshots are kept in memory and lost on restart")
		return snapshot.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SNAPSHOT_ADAPTER %q", adapter)
	}
}

// openAudit connects the audit publisher to RabbitMQ when RABBITMQ_HOST is
// set. Any connection or setup error falls back to logging events.
func openAudit(ctx context.Context) (queue.Publisher, func()) {
	params := queue.ConnParams{
		User:     util.GetEnvString("RABBITMQ_USER", "guest"),
		Password: util.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		Host:     util.GetEnv("RABBITMQ_HOST"),
		Port:     util.GetEnvString("RABBITMQ_PORT", "5672"),
	}
	if params.Host == "" {
		return queue.LogPublisher{}, func() {}
	}

	conn, err := util.RetryWithContext(ctx, 5, util.Backoff{Initial: 500 * time.Millisecond, Max: 5 * time.Second},
		func(context.Context) (*amqp091.Connection, error) {
			return queue.Init(params)
		},
	)
	if err != nil {
		logger.Warn("[Audit] RabbitMQ unavailable, logging audit events instead", "err", err)
		return queue.LogPublisher{}, func() {}
	}

	ch, err := conn.Channel()
	if err == nil {
		err = queue.SetupExchange(ch)
	}
	if err != nil {
		logger.Warn("[Audit] Failed to set up audit exchange, logging audit events instead", "err", err)
		conn.Close()
		return queue.LogPublisher{}, func() {}
	}

	return queue.NewAMQPPublisher(ch), func() {
		ch.Close()
		conn.Close()
	}
}
