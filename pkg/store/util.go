package store

import (
	"fmt"
	"slices"

	"github.com/vocal-lineage/backend/pkg/classify"
	"github.com/vocal-lineage/backend/pkg/common"
)

// Wrap marks err as a store failure. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStore, err)
}

// KindAllowed reports whether kind is in kinds. An empty set allows every
// path kind.
func KindAllowed(kinds []common.RelationKind, kind common.RelationKind) bool {
	if len(kinds) == 0 {
		return slices.Contains(common.PathKinds, kind)
	}
	return slices.Contains(kinds, kind)
}

// DedupeRelationships drops repeated records with the same kind, endpoints
// and qualifier, keeping the first.
func DedupeRelationships(in []common.Relationship) []common.Relationship {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]common.Relationship, 0, len(in))
	for _, r := range in {
		key := string(r.Kind) + "\x00" + r.Source.NodeID() + "\x00" + r.Target.NodeID() + "\x00" + r.Qualifier
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DedupeEntities drops repeated entities by node id, keeping the first.
func DedupeEntities(in []common.Entity) []common.Entity {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]common.Entity, 0, len(in))
	for _, e := range in {
		id := e.NodeID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, e)
	}
	return out
}

// FamilyMemberOf returns the family entry of rel as seen from center. When
// center is the record's target the qualifier is inverted; qualifiers that
// cannot be classified are passed through unchanged so the caller can
// report them.
func FamilyMemberOf(rel common.Relationship, center common.Entity) (common.FamilyMember, bool) {
	id := center.NodeID()
	switch id {
	case rel.Source.NodeID():
		q := rel.Qualifier
		if d := classify.Classify(rel.Kind, rel.Qualifier); d != classify.Unknown {
			q = d.Qualifier()
		}
		return common.FamilyMember{Entity: rel.Target, Qualifier: q, Citation: rel.Citation}, true
	case rel.Target.NodeID():
		q := rel.Qualifier
		if d := classify.Classify(rel.Kind, rel.Qualifier); d != classify.Unknown {
			q = d.Inverse().Qualifier()
		}
		return common.FamilyMember{Entity: rel.Source, Qualifier: q, Citation: rel.Citation}, true
	}
	return common.FamilyMember{}, false
}

// BuildNeighborhood sorts the records touching center into a neighborhood.
// lineage carries the second-degree taught records of a depth 2 fetch.
func BuildNeighborhood(center common.Entity, rels []common.Relationship, lineage []common.Relationship) *common.Neighborhood {
	n := &common.Neighborhood{
		Center:   center,
		Teachers: []common.Entity{},
		Students: []common.Entity{},
		Family:   []common.FamilyMember{},
		Works: common.Works{
			Operas:         []common.RelatedWork{},
			Books:          []common.RelatedWork{},
			ComposedOperas: []common.RelatedWork{},
		},
	}
	id := center.NodeID()

	for _, rel := range DedupeRelationships(rels) {
		if !center.IsPerson() {
			if rel.Target.NodeID() == id {
				n.Related = append(n.Related, rel)
			}
			continue
		}

		outgoing := rel.Source.NodeID() == id
		switch {
		case rel.Kind == common.RelTaught && outgoing:
			n.Students = append(n.Students, rel.Target)
		case rel.Kind == common.RelTaught:
			n.Teachers = append(n.Teachers, rel.Source)
		case rel.Kind.IsFamily():
			if m, ok := FamilyMemberOf(rel, center); ok {
				n.Family = append(n.Family, m)
			}
		case rel.Kind.IsWork() && outgoing:
			w := common.RelatedWork{Entity: rel.Target, Role: rel.Role, Citation: rel.Citation}
			switch rel.Kind {
			case common.RelPremieredRoleIn:
				n.Works.Operas = append(n.Works.Operas, w)
			case common.RelWrote:
				n.Works.ComposedOperas = append(n.Works.ComposedOperas, w)
			case common.RelAuthored:
				n.Works.Books = append(n.Works.Books, w)
			case common.RelEdited:
				n.Works.EditedBooks = append(n.Works.EditedBooks, w)
			}
		}
	}

	n.Teachers = DedupeEntities(n.Teachers)
	n.Students = DedupeEntities(n.Students)
	if n.Teachers == nil {
		n.Teachers = []common.Entity{}
	}
	if n.Students == nil {
		n.Students = []common.Entity{}
	}
	n.Lineage = DedupeRelationships(lineage)

	return n
}
