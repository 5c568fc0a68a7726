package counts

import (
	"context"

	"github.com/vocal-lineage/backend/pkg/classify"
	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/store"
)

// Counts holds the number of relationships of one node per bucket. Buckets
// that do not apply to the node kind stay zero.
type Counts struct {
	TaughtBy        int `json:"taughtBy"`
	Taught          int `json:"taught"`
	Authored        int `json:"authored"`
	Edited          int `json:"edited"`
	PremieredRoleIn int `json:"premieredRoleIn"`
	Wrote           int `json:"wrote"`
	Parent          int `json:"parent"`
	ParentOf        int `json:"parentOf"`
	Grandparent     int `json:"grandparent"`
	GrandparentOf   int `json:"grandparentOf"`
	Spouse          int `json:"spouse"`
	Sibling         int `json:"sibling"`
	EditedBy        int `json:"editedBy"`
}

// Count resolves the named node of kind and tallies its relationships.
func Count(ctx context.Context, s store.GraphStore, kind common.EntityKind, name string) (common.Entity, *Counts, error) {
	center, err := store.Lookup(ctx, s, kind, name)
	if err != nil {
		return common.Entity{}, nil, err
	}

	rels, err := s.Relationships(ctx, center)
	if err != nil {
		return common.Entity{}, nil, err
	}

	c := Tally(center, rels)
	return center, &c, nil
}

// Tally counts the records touching center. Family records are read from
// the center's side; records whose qualifier cannot be classified are
// logged and left out.
func Tally(center common.Entity, rels []common.Relationship) Counts {
	var c Counts
	id := center.NodeID()

	for _, rel := range store.DedupeRelationships(rels) {
		outgoing := rel.Source.NodeID() == id
		incoming := rel.Target.NodeID() == id

		switch center.Kind {
		case common.KindOpera:
			if !incoming {
				continue
			}
			switch rel.Kind {
			case common.RelPremieredRoleIn:
				c.PremieredRoleIn++
			case common.RelWrote:
				c.Wrote++
			}
		case common.KindBook:
			if !incoming {
				continue
			}
			switch rel.Kind {
			case common.RelAuthored:
				c.Authored++
			case common.RelEdited:
				c.EditedBy++
			}
		default:
			tallyPerson(&c, center, rel, outgoing, incoming)
		}
	}
	return c
}

func tallyPerson(c *Counts, center common.Entity, rel common.Relationship, outgoing, incoming bool) {
	if rel.Kind.IsFamily() {
		kind := classify.Classify(rel.Kind, rel.Qualifier)
		if kind == classify.Unknown {
			logger.Warn("[Counts] Unclassified family qualifier", "node", center.Name, "kind", rel.Kind, "qualifier", rel.Qualifier)
			return
		}
		if !outgoing {
			kind = kind.Inverse()
		}
		switch kind {
		case classify.Parent:
			c.Parent++
		case classify.ParentOf:
			c.ParentOf++
		case classify.Grandparent:
			c.Grandparent++
		case classify.GrandparentOf:
			c.GrandparentOf++
		case classify.Spouse:
			c.Spouse++
		case classify.Sibling:
			c.Sibling++
		}
		return
	}

	if rel.Kind == common.RelTaught && incoming && !outgoing {
		c.TaughtBy++
		return
	}
	if !outgoing {
		return
	}
	switch rel.Kind {
	case common.RelTaught:
		c.Taught++
	case common.RelAuthored:
		c.Authored++
	case common.RelEdited:
		c.Edited++
	case common.RelPremieredRoleIn:
		c.PremieredRoleIn++
	case common.RelWrote:
		c.Wrote++
	}
}
