package graph

import (
	"fmt"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
)

// RetractMode selects how a node is taken out of a graph.
type RetractMode string

const (
	// Isolate keeps only the named node.
	Isolate RetractMode = "isolate"
	// Detach drops the named node and every edge touching it.
	Detach RetractMode = "detach"
)

func ParseRetractMode(s string) (RetractMode, error) {
	switch m := RetractMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Isolate, Detach:
		return m, nil
	}
	return "", fmt.Errorf("unknown retract mode %q: %w", s, common.ErrInvalidInput)
}

// Retract returns a copy of g with nodeID isolated or detached. The node
// must be part of g.
func Retract(g Graph, nodeID string, mode RetractMode) (Graph, error) {
	if !g.HasNode(nodeID) {
		return Graph{}, fmt.Errorf("node %q: %w", nodeID, common.ErrNotFound)
	}

	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	switch mode {
	case Isolate:
		for _, n := range g.Nodes {
			if n.ID == nodeID {
				out.Nodes = append(out.Nodes, cloneNode(n))
				break
			}
		}
	case Detach:
		for _, n := range g.Nodes {
			if n.ID != nodeID {
				out.Nodes = append(out.Nodes, cloneNode(n))
			}
		}
		for _, e := range g.Edges {
			if e.Source != nodeID && e.Target != nodeID {
				out.Edges = append(out.Edges, e)
			}
		}
	default:
		return Graph{}, fmt.Errorf("unknown retract mode %q: %w", mode, common.ErrInvalidInput)
	}
	return out, nil
}
