package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Candidates returns every entity of kind. Names are compared after
// diacritic folding, which Cypher cannot do, so the filtering is left to
// the resolver. The list is served from a short-lived per-label cache.
func (s *Store) Candidates(ctx context.Context, kind common.EntityKind, query string) ([]common.Entity, error) {
	return s.candidates.get(ctx, kind)
}

func (s *Store) scanLabel(ctx context.Context, kind common.EntityKind) ([]common.Entity, error) {
	label, key := labelOf(kind)
	cypher := fmt.Sprintf("MATCH (n:%s) WHERE n.%s IS NOT NULL RETURN n", label, key)

	records, err := s.read(ctx, cypher, nil)
	if err != nil {
		return nil, store.Wrap("candidates", err)
	}

	out := make([]common.Entity, 0, len(records))
	for _, record := range records {
		n, ok := recordValue[neo4j.Node](record, "n")
		if !ok {
			continue
		}
		if e, ok := toEntity(n); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Entity(ctx context.Context, kind common.EntityKind, name string) (common.Entity, bool, error) {
	label, key := labelOf(kind)
	cypher := fmt.Sprintf("MATCH (n:%s {%s: $name}) RETURN n LIMIT 1", label, key)

	records, err := s.read(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return common.Entity{}, false, store.Wrap("entity", err)
	}
	if len(records) == 0 {
		return common.Entity{}, false, nil
	}
	n, ok := recordValue[neo4j.Node](records[0], "n")
	if !ok {
		return common.Entity{}, false, nil
	}
	e, ok := toEntity(n)
	return e, ok, nil
}

// relTypes renders kinds as a Cypher relationship type alternation. Kinds
// come from the closed vocabulary so they are safe to inline.
func relTypes(kinds []common.RelationKind) string {
	allowed := make([]string, 0, len(common.PathKinds))
	for _, k := range common.PathKinds {
		if store.KindAllowed(kinds, k) {
			allowed = append(allowed, string(k))
		}
	}
	return strings.Join(allowed, "|")
}

func (s *Store) ShortestPath(
	ctx context.Context,
	from common.Entity,
	to common.Entity,
	maxHops int,
	kinds []common.RelationKind,
) (*common.Path, error) {
	if from.NodeID() == to.NodeID() {
		return &common.Path{Nodes: []common.Entity{from}}, nil
	}
	if maxHops < 1 {
		return nil, nil
	}
	types := relTypes(kinds)
	if types == "" {
		return nil, nil
	}

	fromLabel, fromKey := labelOf(from.Kind)
	toLabel, toKey := labelOf(to.Kind)
	cypher := fmt.Sprintf(
		"MATCH (a:%s {%s: $from}), (b:%s {%s: $to}) "+
			"MATCH p = shortestPath((a)-[:%s*..%d]-(b)) "+
			"RETURN p LIMIT 1",
		fromLabel, fromKey, toLabel, toKey, types, maxHops,
	)

	records, err := s.read(ctx, cypher, map[string]any{"from": from.Name, "to": to.Name})
	if err != nil {
		return nil, store.Wrap("shortest path", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	p, ok := recordValue[neo4j.Path](records[0], "p")
	if !ok {
		return nil, nil
	}
	path, err := toPath(p)
	if err != nil {
		return nil, store.Wrap("shortest path", err)
	}
	return path, nil
}

const touchingCypher = "MATCH (c:%s {%s: $name})-[r]-() " +
	"RETURN r, startNode(r) AS s, endNode(r) AS e"

// lineageCypher returns the taught records one step beyond the center's
// teachers and students.
const lineageCypher = "MATCH (c:Person {full_name: $name}) " +
	"CALL { " +
	"WITH c MATCH (:Person)-[r:TAUGHT]->(:Person)-[:TAUGHT]->(c) RETURN r " +
	"UNION " +
	"WITH c MATCH (c)-[:TAUGHT]->(:Person)-[r:TAUGHT]->(:Person) RETURN r " +
	"} " +
	"RETURN r, startNode(r) AS s, endNode(r) AS e"

func (s *Store) relationships(ctx context.Context, cypher string, name string) ([]common.Relationship, error) {
	records, err := s.read(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	out := make([]common.Relationship, 0, len(records))
	for _, record := range records {
		r, ok := recordValue[neo4j.Relationship](record, "r")
		if !ok {
			continue
		}
		start, ok := recordValue[neo4j.Node](record, "s")
		if !ok {
			continue
		}
		end, ok := recordValue[neo4j.Node](record, "e")
		if !ok {
			continue
		}
		if rel, ok := toRelationship(r, start, end); ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (s *Store) Relationships(ctx context.Context, e common.Entity) ([]common.Relationship, error) {
	label, key := labelOf(e.Kind)
	rels, err := s.relationships(ctx, fmt.Sprintf(touchingCypher, label, key), e.Name)
	if err != nil {
		return nil, store.Wrap("relationships", err)
	}
	return rels, nil
}

func (s *Store) Neighborhood(ctx context.Context, center common.Entity, depth int) (*common.Neighborhood, error) {
	c, ok, err := s.Entity(ctx, center.Kind, center.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", center.Kind, center.Name, common.ErrNotFound)
	}

	rels, err := s.Relationships(ctx, c)
	if err != nil {
		return nil, err
	}

	var lineage []common.Relationship
	if depth >= 2 && c.IsPerson() {
		lineage, err = s.relationships(ctx, lineageCypher, c.Name)
		if err != nil {
			return nil, store.Wrap("lineage", err)
		}
	}

	logger.Debug("[Store] Neighborhood", "center", c.Name, "records", len(rels), "lineage", len(lineage))

	return store.BuildNeighborhood(c, rels, lineage), nil
}
