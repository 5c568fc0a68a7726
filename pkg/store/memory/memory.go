package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/store"
)

// Store is an in-process GraphStore. It backs local development and the
// tests of every package that needs a graph.
type Store struct {
	mu        sync.RWMutex
	entities  map[string]common.Entity
	order     []string
	rels      []common.Relationship
	adjacency map[string][]int
}

var _ store.GraphStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		entities:  make(map[string]common.Entity),
		adjacency: make(map[string][]int),
	}
}

// AddEntity inserts or replaces an entity.
func (s *Store) AddEntity(e common.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := e.NodeID()
	if _, ok := s.entities[id]; !ok {
		s.order = append(s.order, id)
	}
	s.entities[id] = e
}

// AddRelationship inserts a record. Both endpoints must already exist; the
// stored record carries the registered entities, not the given copies.
func (s *Store) AddRelationship(r common.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.entities[r.Source.NodeID()]
	if !ok {
		return fmt.Errorf("unknown source %q", r.Source.NodeID())
	}
	tgt, ok := s.entities[r.Target.NodeID()]
	if !ok {
		return fmt.Errorf("unknown target %q", r.Target.NodeID())
	}
	r.Source = src
	r.Target = tgt

	idx := len(s.rels)
	s.rels = append(s.rels, r)
	s.adjacency[src.NodeID()] = append(s.adjacency[src.NodeID()], idx)
	if tgt.NodeID() != src.NodeID() {
		s.adjacency[tgt.NodeID()] = append(s.adjacency[tgt.NodeID()], idx)
	}
	return nil
}

func (s *Store) Candidates(ctx context.Context, kind common.EntityKind, query string) ([]common.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap("candidates", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.Entity, 0)
	for _, id := range s.order {
		e := s.entities[id]
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Entity(ctx context.Context, kind common.EntityKind, name string) (common.Entity, bool, error) {
	if err := ctx.Err(); err != nil {
		return common.Entity{}, false, store.Wrap("entity", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[common.NodeID(kind, name)]
	return e, ok, nil
}

// ShortestPath runs a breadth-first search over the undirected view of the
// allowed kinds. Ties are broken by insertion order.
func (s *Store) ShortestPath(
	ctx context.Context,
	from common.Entity,
	to common.Entity,
	maxHops int,
	kinds []common.RelationKind,
) (*common.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap("shortest path", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start, goal := from.NodeID(), to.NodeID()
	if _, ok := s.entities[start]; !ok {
		return nil, nil
	}
	if _, ok := s.entities[goal]; !ok {
		return nil, nil
	}
	if start == goal {
		return &common.Path{Nodes: []common.Entity{s.entities[start]}}, nil
	}

	visited := map[string]visit{start: {rel: -1}}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur].depth
		if depth >= maxHops {
			continue
		}

		for _, idx := range s.adjacency[cur] {
			rel := s.rels[idx]
			if !store.KindAllowed(kinds, rel.Kind) {
				continue
			}
			next := rel.Target.NodeID()
			if next == cur {
				next = rel.Source.NodeID()
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = visit{prev: cur, rel: idx, depth: depth + 1}
			if next == goal {
				return s.unwind(visited, start, goal), nil
			}
			queue = append(queue, next)
		}
	}

	return nil, nil
}

type visit struct {
	prev  string
	rel   int
	depth int
}

func (s *Store) unwind(visited map[string]visit, start, goal string) *common.Path {
	n := visited[goal].depth
	path := &common.Path{
		Nodes: make([]common.Entity, n+1),
		Edges: make([]common.Relationship, n),
	}
	cur := goal
	for i := n; i > 0; i-- {
		v := visited[cur]
		path.Nodes[i] = s.entities[cur]
		path.Edges[i-1] = s.rels[v.rel]
		cur = v.prev
	}
	path.Nodes[0] = s.entities[start]
	return path
}

func (s *Store) Neighborhood(ctx context.Context, center common.Entity, depth int) (*common.Neighborhood, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap("neighborhood", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.entities[center.NodeID()]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", center.Kind, center.Name, common.ErrNotFound)
	}

	rels := s.touching(c.NodeID())

	var lineage []common.Relationship
	if depth >= 2 && c.IsPerson() {
		id := c.NodeID()
		for _, rel := range rels {
			if rel.Kind != common.RelTaught {
				continue
			}
			if rel.Target.NodeID() == id {
				// teachers of this teacher
				for _, r := range s.touching(rel.Source.NodeID()) {
					if r.Kind == common.RelTaught && r.Target.NodeID() == rel.Source.NodeID() {
						lineage = append(lineage, r)
					}
				}
			} else {
				// students of this student
				for _, r := range s.touching(rel.Target.NodeID()) {
					if r.Kind == common.RelTaught && r.Source.NodeID() == rel.Target.NodeID() {
						lineage = append(lineage, r)
					}
				}
			}
		}
	}

	logger.Debug("[Store] Neighborhood", "center", c.Name, "records", len(rels), "lineage", len(lineage))

	return store.BuildNeighborhood(c, rels, lineage), nil
}

func (s *Store) Relationships(ctx context.Context, e common.Entity) ([]common.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap("relationships", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.touching(e.NodeID()), nil
}

func (s *Store) touching(id string) []common.Relationship {
	idxs := s.adjacency[id]
	out := make([]common.Relationship, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, s.rels[idx])
	}
	return out
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}
