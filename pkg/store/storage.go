package store

import (
	"context"

	"github.com/vocal-lineage/backend/pkg/common"
)

// GraphStore is the read-only view of the lineage graph this service needs.
// Implementations open and release their own session per call and report
// every failure wrapped in common.ErrStore.
type GraphStore interface {
	// Candidates returns the entities of kind that may match query. The
	// result is a superset; ranking is left to the caller.
	Candidates(ctx context.Context, kind common.EntityKind, query string) ([]common.Entity, error)

	// Entity looks up an entity by its exact natural key.
	Entity(ctx context.Context, kind common.EntityKind, name string) (common.Entity, bool, error)

	// ShortestPath returns an unweighted shortest path between two people,
	// traversing the given kinds in either direction with at most maxHops
	// edges. It returns nil when no such path exists.
	ShortestPath(
		ctx context.Context,
		from common.Entity,
		to common.Entity,
		maxHops int,
		kinds []common.RelationKind,
	) (*common.Path, error)

	// Neighborhood returns everything directly related to center. Depth 2
	// adds the second-degree taught lineage.
	Neighborhood(ctx context.Context, center common.Entity, depth int) (*common.Neighborhood, error)

	// Relationships returns every record with e as source or target.
	Relationships(ctx context.Context, e common.Entity) ([]common.Relationship, error)

	Close(ctx context.Context) error
}
