package graph

import (
	"github.com/vocal-lineage/backend/pkg/classify"
	"github.com/vocal-lineage/backend/pkg/common"
)

// Position is a canvas coordinate assigned by the layout engine. It is
// carried through merges untouched.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is an entity placed on the canvas. ID is the entity's natural key.
type Node struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"displayName"`
	Kind        common.EntityKind `json:"kind"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	IsFocal     bool              `json:"isFocal"`
	Position    *Position         `json:"position,omitempty"`
}

// Edge is a directed, labelled link between two nodes. Edges are identified
// by source, target and kind.
type Edge struct {
	Source     string                   `json:"source"`
	Target     string                   `json:"target"`
	Kind       classify.DirectionalKind `json:"kind"`
	Label      string                   `json:"label"`
	OrderIndex *int                     `json:"orderIndex,omitempty"`
}

// Key returns the identity of the edge.
func (e Edge) Key() string {
	return e.Source + "\x00" + e.Target + "\x00" + string(e.Kind)
}

// Graph is the visual model shown to a user. The zero value is the empty
// graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Delta holds the nodes and edges a merge adds to a graph.
type Delta struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether the delta adds nothing.
func (d Delta) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}

// NodeFor returns the canvas node of an entity.
func NodeFor(e common.Entity) Node {
	var attrs map[string]string
	if len(e.Attributes) > 0 {
		attrs = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			attrs[k] = v
		}
	}
	return Node{
		ID:          e.NodeID(),
		DisplayName: e.Name,
		Kind:        e.Kind,
		Attributes:  attrs,
	}
}

// HasNode reports whether the graph contains a node with id.
func (g Graph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, cloneNode(n))
	}
	for _, e := range g.Edges {
		if e.OrderIndex != nil {
			idx := *e.OrderIndex
			e.OrderIndex = &idx
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}

func cloneNode(n Node) Node {
	if n.Attributes != nil {
		attrs := make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			attrs[k] = v
		}
		n.Attributes = attrs
	}
	if n.Position != nil {
		p := *n.Position
		n.Position = &p
	}
	return n
}
