package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/vocal-lineage/backend/internal/util"
	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/snapshot"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the snapshot schema up to date.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Info("[Storage] Migrations applied", "version", version, "dirty", dirty)
	return nil
}

// PostgresSnapshots stores snapshots in the snapshots table.
type PostgresSnapshots struct {
	pool *pgxpool.Pool
}

var _ snapshot.Store = (*PostgresSnapshots)(nil)

func NewPostgresSnapshots(pool *pgxpool.Pool) *PostgresSnapshots {
	return &PostgresSnapshots{pool: pool}
}

const insertSnapshot = `INSERT INTO snapshots (id, owner, name, payload, created_at)
VALUES ($1, $2, $3, $4::jsonb, $5)`

const selectSnapshot = `SELECT id, owner, name, payload, created_at
FROM snapshots
WHERE id = $1 AND owner = $2`

func (p *PostgresSnapshots) Save(ctx context.Context, s *snapshot.Snapshot) error {
	name := util.SanitizePostgresText(s.Name)
	_, err := p.pool.Exec(ctx, insertSnapshot, s.ID, s.Owner, name, []byte(s.Payload), s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (p *PostgresSnapshots) Get(ctx context.Context, owner string, id string) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	var payload []byte
	err := p.pool.QueryRow(ctx, selectSnapshot, id, owner).Scan(&s.ID, &s.Owner, &s.Name, &payload, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	s.Payload = payload
	return &s, nil
}
