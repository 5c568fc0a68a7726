package graph

import (
	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
)

// builder collects nodes and edges that are not yet part of a base graph.
// Nodes seen twice within the builder are merged: attributes are unioned
// and the first value of a conflicting key wins.
type builder struct {
	knownNodes map[string]struct{}
	knownEdges map[string]struct{}

	nodes []Node
	index map[string]int
	edges []Edge
	seen  map[string]struct{}
}

func newBuilder(base Graph) *builder {
	b := &builder{
		knownNodes: make(map[string]struct{}, len(base.Nodes)),
		knownEdges: make(map[string]struct{}, len(base.Edges)),
		nodes:      []Node{},
		index:      make(map[string]int),
		edges:      []Edge{},
		seen:       make(map[string]struct{}),
	}
	for _, n := range base.Nodes {
		b.knownNodes[n.ID] = struct{}{}
	}
	for _, e := range base.Edges {
		b.knownEdges[e.Key()] = struct{}{}
	}
	return b
}

func (b *builder) addNode(n Node) {
	if _, ok := b.knownNodes[n.ID]; ok {
		return
	}
	if i, ok := b.index[n.ID]; ok {
		existing := &b.nodes[i]
		for k, v := range n.Attributes {
			if existing.Attributes == nil {
				existing.Attributes = make(map[string]string)
			}
			if _, set := existing.Attributes[k]; !set {
				existing.Attributes[k] = v
			}
		}
		return
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

func (b *builder) addEdge(e Edge) {
	key := e.Key()
	if _, ok := b.knownEdges[key]; ok {
		return
	}
	if _, ok := b.seen[key]; ok {
		return
	}
	b.seen[key] = struct{}{}
	b.edges = append(b.edges, e)
}

// Merge returns the nodes and edges of the subject's neighborhood that are
// not already in existing, optionally restricted by filter. existing is not
// modified.
func Merge(existing Graph, n *common.Neighborhood, subject common.Entity, filter Filter) Delta {
	if n != nil && n.Center.NodeID() == subject.NodeID() {
		subject = n.Center
	}

	b := newBuilder(existing)
	b.addNode(NodeFor(subject))

	if n != nil {
		for _, it := range items(n, subject) {
			if !filter.allows(it) {
				continue
			}
			for _, e := range it.nodes {
				b.addNode(NodeFor(e))
			}
			b.addEdge(it.edge)
		}
	}

	logger.Debug("[Graph] Merged", "subject", subject.Name, "new_nodes", len(b.nodes), "new_edges", len(b.edges))

	return Delta{Nodes: b.nodes, Edges: b.edges}
}

// Apply returns g extended by d. Nodes and edges already present in g are
// skipped, so applying the same delta twice is a no-op.
func Apply(g Graph, d Delta) Graph {
	out := g.Clone()
	b := newBuilder(g)
	for _, n := range d.Nodes {
		b.addNode(cloneNode(n))
	}
	for _, e := range d.Edges {
		b.addEdge(e)
	}
	out.Nodes = append(out.Nodes, b.nodes...)
	out.Edges = append(out.Edges, b.edges...)
	return out
}
