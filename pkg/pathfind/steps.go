package pathfind

import (
	"github.com/vocal-lineage/backend/pkg/classify"
	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
)

// Step is one oriented edge of a resolved path.
type Step struct {
	Order        int                      `json:"order"`
	Source       common.Summary           `json:"source"`
	Target       common.Summary           `json:"target"`
	Kind         classify.DirectionalKind `json:"kind"`
	RelationKind common.RelationKind      `json:"relationKind"`
	Label        string                   `json:"label"`
	Role         string                   `json:"role,omitempty"`
	CitationText string                   `json:"citationText,omitempty"`
	CitationURL  string                   `json:"citationUrl,omitempty"`
}

// Link is the edge view of a step for the graph canvas.
type Link struct {
	Source string                   `json:"source"`
	Target string                   `json:"target"`
	Kind   classify.DirectionalKind `json:"kind"`
	Label  string                   `json:"label"`
}

// Result is the payload of a path lookup. An empty Steps list is the
// zero-length path between an entity and itself.
type Result struct {
	Nodes []common.Summary `json:"nodes"`
	Links []Link           `json:"links"`
	Steps []Step           `json:"steps"`
}

// orient turns the i-th edge of a raw path into a step whose source and
// target follow the display direction of the relationship kind.
func orient(path *common.Path, i int) Step {
	edge := path.Edges[i]
	from, to := path.Nodes[i], path.Nodes[i+1]

	var src, tgt common.Entity
	var kind classify.DirectionalKind

	switch {
	case edge.Kind.IsFamily():
		// family edges read in path order, their kind flipped when the
		// path walks the stored edge backwards
		src, tgt = from, to
		kind = classify.Classify(edge.Kind, edge.Qualifier)
		if kind == classify.Unknown {
			logger.Warn("[Path] Unclassified family qualifier", "kind", edge.Kind, "qualifier", edge.Qualifier, "source", edge.Source.Name, "target", edge.Target.Name)
		} else if from.NodeID() != edge.Source.NodeID() {
			kind = kind.Inverse()
		}
	case edge.Kind.IsWork():
		src, tgt = edge.Source, edge.Target
		if !edge.Source.IsPerson() && edge.Target.IsPerson() {
			src, tgt = edge.Target, edge.Source
		}
		kind = classify.Classify(edge.Kind, edge.Qualifier)
	default:
		src, tgt = edge.Source, edge.Target
		kind = classify.Classify(edge.Kind, edge.Qualifier)
	}

	step := Step{
		Order:        i + 1,
		Source:       src.Summarize(),
		Target:       tgt.Summarize(),
		Kind:         kind,
		RelationKind: edge.Kind,
		Label:        kind.Label(),
		Role:         edge.Role,
		CitationURL:  edge.Citation.URL,
	}
	if text, ok := edge.Citation.Text(); ok {
		step.CitationText = text
	}
	return step
}

// buildResult orients every edge of path and collects the canvas view.
func buildResult(path *common.Path) *Result {
	res := &Result{
		Nodes: make([]common.Summary, 0, len(path.Nodes)),
		Links: make([]Link, 0, len(path.Edges)),
		Steps: make([]Step, 0, len(path.Edges)),
	}
	for _, n := range path.Nodes {
		res.Nodes = append(res.Nodes, n.Summarize())
	}
	for i := range path.Edges {
		step := orient(path, i)
		res.Steps = append(res.Steps, step)
		res.Links = append(res.Links, Link{
			Source: step.Source.ID,
			Target: step.Target.ID,
			Kind:   step.Kind,
			Label:  step.Label,
		})
	}
	return res
}
