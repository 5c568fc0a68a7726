package store

import (
	"context"
	"time"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented wraps a GraphStore and records the latency and outcome of
// every call.
type Instrumented struct {
	next    GraphStore
	latency *prometheus.HistogramVec
}

var _ GraphStore = (*Instrumented)(nil)

// Instrument wraps next. reg may be nil.
func Instrument(next GraphStore, reg prometheus.Registerer) *Instrumented {
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lineage_store_call_duration_seconds",
		Help:    "Graph store call latency by operation and outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "outcome"})
	if reg != nil {
		if err := reg.Register(latency); err != nil {
			logger.Warn("[Store] Failed to register metrics", "err", err)
		}
	}
	return &Instrumented{next: next, latency: latency}
}

func (i *Instrumented) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.latency.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func (i *Instrumented) Candidates(ctx context.Context, kind common.EntityKind, query string) ([]common.Entity, error) {
	start := time.Now()
	out, err := i.next.Candidates(ctx, kind, query)
	i.observe("candidates", start, err)
	return out, err
}

func (i *Instrumented) Entity(ctx context.Context, kind common.EntityKind, name string) (common.Entity, bool, error) {
	start := time.Now()
	e, ok, err := i.next.Entity(ctx, kind, name)
	i.observe("entity", start, err)
	return e, ok, err
}

func (i *Instrumented) ShortestPath(
	ctx context.Context,
	from common.Entity,
	to common.Entity,
	maxHops int,
	kinds []common.RelationKind,
) (*common.Path, error) {
	start := time.Now()
	p, err := i.next.ShortestPath(ctx, from, to, maxHops, kinds)
	i.observe("shortest_path", start, err)
	return p, err
}

func (i *Instrumented) Neighborhood(ctx context.Context, center common.Entity, depth int) (*common.Neighborhood, error) {
	start := time.Now()
	n, err := i.next.Neighborhood(ctx, center, depth)
	i.observe("neighborhood", start, err)
	return n, err
}

func (i *Instrumented) Relationships(ctx context.Context, e common.Entity) ([]common.Relationship, error) {
	start := time.Now()
	rels, err := i.next.Relationships(ctx, e)
	i.observe("relationships", start, err)
	return rels, err
}

func (i *Instrumented) Close(ctx context.Context) error {
	return i.next.Close(ctx)
}
