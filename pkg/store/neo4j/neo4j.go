package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds the connection settings of a Neo4j graph store.
type Config struct {
	URI      string
	Username string
	Password string
	Database string

	MaxConnectionPoolSize int
	ConnectionTimeout     time.Duration
	// ConnectRetries bounds the connection attempts made by Connect.
	ConnectRetries int
	// CandidateTTL is how long a label's candidate list is reused.
	CandidateTTL time.Duration
}

func (c *Config) defaults() {
	if c.MaxConnectionPoolSize <= 0 {
		c.MaxConnectionPoolSize = 50
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = 30 * time.Second
	}
	if c.ConnectRetries <= 0 {
		c.ConnectRetries = 5
	}
}

// Store is a GraphStore backed by Neo4j. Every call runs in its own read
// session which is closed before the call returns.
type Store struct {
	driver     neo4j.DriverWithContext
	database   string
	candidates *candidateCache
}

var _ store.GraphStore = (*Store)(nil)

// Connect creates the driver and verifies connectivity, retrying with
// exponential backoff.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}
	cfg.defaults()

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	configure := func(conf *neo4j.Config) {
		conf.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		conf.ConnectionAcquisitionTimeout = cfg.ConnectionTimeout
	}

	attempt := 0
	backoff := util.Backoff{Initial: 100 * time.Millisecond, Max: cfg.ConnectionTimeout}
	driver, err := util.RetryWithContext(ctx, cfg.ConnectRetries, backoff, func(ctx context.Context) (neo4j.DriverWithContext, error) {
		attempt++
		driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, configure)
		if err != nil {
			logger.Warn("[Store] Neo4j driver creation failed", "attempt", attempt, "err", err)
			return nil, err
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			_ = driver.Close(ctx)
			logger.Warn("[Store] Neo4j connection attempt failed", "attempt", attempt, "err", err)
			return nil, err
		}
		return driver, nil
	})
	if err != nil {
		return nil, store.Wrap(fmt.Sprintf("connect after %d attempts", attempt), err)
	}

	logger.Info("[Store] Connected to Neo4j", "uri", cfg.URI, "database", cfg.Database)
	s := &Store{driver: driver, database: cfg.Database}
	s.candidates = newCandidateCache(cfg.CandidateTTL, s.scanLabel)
	return s, nil
}

// read runs cypher in a fresh read session and returns the collected
// records.
func (s *Store) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

// Health verifies that the database is reachable.
func (s *Store) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return store.Wrap("health", s.driver.VerifyConnectivity(ctx))
}

func (s *Store) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return store.Wrap("close", err)
}
