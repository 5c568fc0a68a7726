package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vocal-lineage/backend/internal/queue"
	"github.com/vocal-lineage/backend/internal/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAuditLog appends consumed audit events to the audit_events table.
type PostgresAuditLog struct {
	pool *pgxpool.Pool
}

var _ queue.AuditSink = (*PostgresAuditLog)(nil)

func NewPostgresAuditLog(pool *pgxpool.Pool) *PostgresAuditLog {
	return &PostgresAuditLog{pool: pool}
}

const insertAuditEvent = `INSERT INTO audit_events (id, actor, role, action, attrs, at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)
ON CONFLICT (id) DO NOTHING`

func (p *PostgresAuditLog) Record(ctx context.Context, e queue.Event) error {
	data, err := json.Marshal(util.SanitizePostgresAttrs(e.Attrs))
	if err != nil {
		return fmt.Errorf("failed to encode audit attrs: %w", err)
	}

	_, err = p.pool.Exec(
		ctx,
		insertAuditEvent,
		e.ID,
		util.SanitizePostgresText(e.Actor),
		util.SanitizePostgresText(e.Role),
		e.Action,
		data,
		e.At,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
