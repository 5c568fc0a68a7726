package neo4j

import (
	"fmt"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Node labels and key properties.
const (
	labelPerson = "Person"
	labelOpera  = "Opera"
	labelBook   = "Book"

	propFullName = "full_name"
	propTitle    = "title"
)

// Relationship properties.
const (
	propQualifier   = "relationship_type"
	propRole        = "role"
	propCitation    = "citation"
	propLegacy      = "source"
	propCitationURL = "citation_url"
)

// structuredCitation names the kind specific citation property.
var structuredCitation = map[common.RelationKind]string{
	common.RelTaught:          "teaching_citation",
	common.RelPremieredRoleIn: "premiere_citation",
	common.RelAuthored:        "authorship_citation",
	common.RelWrote:           "composition_citation",
	common.RelEdited:          "editorial_citation",
	common.RelParent:          "family_citation",
	common.RelSpouse:          "family_citation",
	common.RelSibling:         "family_citation",
	common.RelGrandparent:     "family_citation",
	common.RelFamily:          "family_citation",
}

func labelOf(kind common.EntityKind) (label, key string) {
	switch kind {
	case common.KindOpera:
		return labelOpera, propTitle
	case common.KindBook:
		return labelBook, propTitle
	default:
		return labelPerson, propFullName
	}
}

func kindOf(labels []string) (common.EntityKind, bool) {
	for _, l := range labels {
		switch l {
		case labelPerson:
			return common.KindPerson, true
		case labelOpera:
			return common.KindOpera, true
		case labelBook:
			return common.KindBook, true
		}
	}
	return "", false
}

func stringProp(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// toEntity maps a stored node onto an entity. Nodes without a known label
// or key are rejected.
func toEntity(n neo4j.Node) (common.Entity, bool) {
	kind, ok := kindOf(n.Labels)
	if !ok {
		return common.Entity{}, false
	}
	_, key := labelOf(kind)
	name := strings.TrimSpace(stringProp(n.Props, key))
	if name == "" {
		return common.Entity{}, false
	}

	e := common.Entity{Kind: kind, Name: name}
	for k, v := range n.Props {
		if k == key || v == nil {
			continue
		}
		if e.Attributes == nil {
			e.Attributes = make(map[string]string, len(n.Props))
		}
		e.Attributes[k] = stringProp(n.Props, k)
	}
	return e, true
}

func citationOf(kind common.RelationKind, props map[string]any) common.Citation {
	c := common.Citation{
		Generic: stringProp(props, propCitation),
		Legacy:  stringProp(props, propLegacy),
		URL:     stringProp(props, propCitationURL),
	}
	if key, ok := structuredCitation[kind]; ok {
		c.Structured = stringProp(props, key)
	}
	return c
}

// toRelationship maps a stored relationship and its native endpoints onto a
// record. Unknown types are logged and dropped.
func toRelationship(r neo4j.Relationship, start, end neo4j.Node) (common.Relationship, bool) {
	kind, ok := common.ParseRelationKind(r.Type)
	if !ok {
		logger.Debug("[Store] Dropping relationship of unknown type", "type", r.Type)
		return common.Relationship{}, false
	}
	src, ok := toEntity(start)
	if !ok {
		return common.Relationship{}, false
	}
	tgt, ok := toEntity(end)
	if !ok {
		return common.Relationship{}, false
	}
	return common.Relationship{
		Kind:      kind,
		Source:    src,
		Target:    tgt,
		Qualifier: stringProp(r.Props, propQualifier),
		Role:      stringProp(r.Props, propRole),
		Citation:  citationOf(kind, r.Props),
	}, true
}

// toPath maps a traversal result. The relationships of a path keep their
// native direction; StartElementId tells which node they leave from.
func toPath(p neo4j.Path) (*common.Path, error) {
	if len(p.Relationships) != len(p.Nodes)-1 {
		return nil, fmt.Errorf("malformed path with %d nodes and %d relationships", len(p.Nodes), len(p.Relationships))
	}

	byID := make(map[string]neo4j.Node, len(p.Nodes))
	out := &common.Path{
		Nodes: make([]common.Entity, 0, len(p.Nodes)),
		Edges: make([]common.Relationship, 0, len(p.Relationships)),
	}
	for _, n := range p.Nodes {
		e, ok := toEntity(n)
		if !ok {
			return nil, fmt.Errorf("path node %s has no usable label or key", n.ElementId)
		}
		byID[n.ElementId] = n
		out.Nodes = append(out.Nodes, e)
	}
	for _, r := range p.Relationships {
		rel, ok := toRelationship(r, byID[r.StartElementId], byID[r.EndElementId])
		if !ok {
			return nil, fmt.Errorf("path relationship %s of type %s is not usable", r.ElementId, r.Type)
		}
		out.Edges = append(out.Edges, rel)
	}
	return out, nil
}

func recordValue[T any](record *neo4j.Record, key string) (T, bool) {
	var zero T
	v, ok := record.Get(key)
	if !ok || v == nil {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
