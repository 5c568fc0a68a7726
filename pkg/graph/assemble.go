package graph

import (
	"fmt"
	"strings"

	"github.com/vocal-lineage/backend/pkg/classify"
	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
)

// Group is the neighborhood list a related entity comes from.
type Group string

const (
	GroupTeachers Group = "teachers"
	GroupStudents Group = "students"
	GroupFamily   Group = "family"
	GroupWorks    Group = "works"
	GroupLineage  Group = "lineage"
)

// Filter restricts a merge to one group or one directional kind. The zero
// value lets everything through.
type Filter struct {
	Group Group
	Kind  classify.DirectionalKind
}

var filterKinds = []classify.DirectionalKind{
	classify.Taught,
	classify.Premiered,
	classify.Authored,
	classify.Composed,
	classify.Edited,
	classify.Parent,
	classify.ParentOf,
	classify.Spouse,
	classify.Grandparent,
	classify.GrandparentOf,
	classify.Sibling,
}

// ParseFilter reads a relationship filter. Blank means no filter.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Filter{}, nil
	}
	switch g := Group(strings.ToLower(s)); g {
	case GroupTeachers, GroupStudents, GroupFamily, GroupWorks, GroupLineage:
		return Filter{Group: g}, nil
	}
	for _, k := range filterKinds {
		if strings.EqualFold(s, string(k)) {
			return Filter{Kind: k}, nil
		}
	}
	return Filter{}, fmt.Errorf("unknown relationship filter %q: %w", s, common.ErrInvalidInput)
}

func (f Filter) allows(it item) bool {
	if f.Group != "" && f.Group != it.group {
		return false
	}
	if f.Kind != classify.Unknown && f.Kind != it.edge.Kind {
		return false
	}
	return true
}

// item is one related entity of a neighborhood together with the edge that
// attaches it.
type item struct {
	group Group
	nodes []common.Entity
	edge  Edge
}

func edgeOf(src, tgt common.Entity, kind classify.DirectionalKind) Edge {
	return Edge{
		Source: src.NodeID(),
		Target: tgt.NodeID(),
		Kind:   kind,
		Label:  kind.Label(),
	}
}

// items flattens a neighborhood into edges anchored at subject. Family
// entries whose qualifier cannot be classified are logged and skipped.
func items(n *common.Neighborhood, subject common.Entity) []item {
	var out []item

	for _, t := range n.Teachers {
		out = append(out, item{GroupTeachers, []common.Entity{t}, edgeOf(t, subject, classify.Taught)})
	}
	for _, s := range n.Students {
		out = append(out, item{GroupStudents, []common.Entity{s}, edgeOf(subject, s, classify.Taught)})
	}
	for _, m := range n.Family {
		kind := classify.Classify(common.RelFamily, m.Qualifier)
		if kind == classify.Unknown {
			logger.Warn("[Graph] Unclassified family qualifier", "subject", subject.Name, "relative", m.Entity.Name, "qualifier", m.Qualifier)
			continue
		}
		out = append(out, item{GroupFamily, []common.Entity{m.Entity}, edgeOf(subject, m.Entity, kind)})
	}

	works := []struct {
		list []common.RelatedWork
		kind classify.DirectionalKind
	}{
		{n.Works.Operas, classify.Premiered},
		{n.Works.Books, classify.Authored},
		{n.Works.ComposedOperas, classify.Composed},
		{n.Works.EditedBooks, classify.Edited},
	}
	for _, w := range works {
		for _, rw := range w.list {
			out = append(out, item{GroupWorks, []common.Entity{rw.Entity}, edgeOf(subject, rw.Entity, w.kind)})
		}
	}

	for _, rel := range n.Related {
		kind := classify.Classify(rel.Kind, rel.Qualifier)
		if kind == classify.Unknown {
			continue
		}
		out = append(out, item{GroupWorks, []common.Entity{rel.Source}, edgeOf(rel.Source, subject, kind)})
	}

	for _, rel := range n.Lineage {
		out = append(out, item{GroupLineage, []common.Entity{rel.Source, rel.Target}, edgeOf(rel.Source, rel.Target, classify.Taught)})
	}

	return out
}

// Assemble builds a fresh graph from a neighborhood. The focal entity is
// named by focalName and domain; when it is the neighborhood's center the
// center's attributes are used.
func Assemble(n *common.Neighborhood, focalName string, domain common.EntityKind) Graph {
	focal := common.Entity{Kind: domain, Name: focalName}
	if focal.Kind == "" {
		focal.Kind = common.KindPerson
	}
	if n != nil && n.Center.NodeID() == focal.NodeID() {
		focal = n.Center
	}

	b := newBuilder(Graph{})
	root := NodeFor(focal)
	root.IsFocal = true
	b.addNode(root)

	if n != nil {
		for _, it := range items(n, focal) {
			for _, e := range it.nodes {
				b.addNode(NodeFor(e))
			}
			b.addEdge(it.edge)
		}
	}

	logger.Debug("[Graph] Assembled", "focal", focal.Name, "nodes", len(b.nodes), "edges", len(b.edges))

	return Graph{Nodes: b.nodes, Edges: b.edges}
}
