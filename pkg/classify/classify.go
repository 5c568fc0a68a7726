package classify

import (
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
)

// DirectionalKind is the display taxonomy of a relationship.
type DirectionalKind string

const (
	Unknown DirectionalKind = ""

	Taught    DirectionalKind = "taught"
	Premiered DirectionalKind = "premiered"
	Authored  DirectionalKind = "authored"
	Composed  DirectionalKind = "composed"
	Edited    DirectionalKind = "edited"

	Parent        DirectionalKind = "parent"
	ParentOf      DirectionalKind = "parentOf"
	Spouse        DirectionalKind = "spouse"
	Grandparent   DirectionalKind = "grandparent"
	GrandparentOf DirectionalKind = "grandparentOf"
	Sibling       DirectionalKind = "sibling"
)

var identity = map[common.RelationKind]DirectionalKind{
	common.RelTaught:          Taught,
	common.RelPremieredRoleIn: Premiered,
	common.RelAuthored:        Authored,
	common.RelWrote:           Composed,
	common.RelEdited:          Edited,
}

// Classify maps a raw relationship record onto a directional kind. Family
// records are classified from their qualifier; when the qualifier is blank
// the kind name itself is used. Anything outside the known vocabulary is
// Unknown and must not be counted.
func Classify(kind common.RelationKind, qualifier string) DirectionalKind {
	if !kind.IsFamily() {
		return identity[kind]
	}

	q := strings.ToLower(strings.TrimSpace(qualifier))
	if q == "" && kind != common.RelFamily {
		q = strings.ToLower(string(kind))
	}
	return classifyFamily(q)
}

// classifyFamily applies the qualifier rules in priority order. Qualifiers
// naming a grandparent skip the parent rules, which would otherwise match
// them first.
func classifyFamily(q string) DirectionalKind {
	hasOf := strings.Contains(q, "of")
	grand := strings.Contains(q, "grandparent")

	switch {
	case !grand && strings.Contains(q, "parent") && hasOf:
		return ParentOf
	case !grand && strings.Contains(q, "parent"):
		return Parent
	case strings.Contains(q, "spouse"):
		return Spouse
	case grand && hasOf:
		return GrandparentOf
	case grand:
		return Grandparent
	case strings.Contains(q, "sibling"):
		return Sibling
	}
	return Unknown
}

// Inverse returns the kind as read from the other endpoint of the edge.
func (d DirectionalKind) Inverse() DirectionalKind {
	switch d {
	case Parent:
		return ParentOf
	case ParentOf:
		return Parent
	case Grandparent:
		return GrandparentOf
	case GrandparentOf:
		return Grandparent
	}
	return d
}

// IsFamily reports whether d is one of the six family kinds.
func (d DirectionalKind) IsFamily() bool {
	switch d {
	case Parent, ParentOf, Spouse, Grandparent, GrandparentOf, Sibling:
		return true
	}
	return false
}

// IsSymmetric reports whether d reads the same from both endpoints.
func (d DirectionalKind) IsSymmetric() bool {
	return d == Spouse || d == Sibling
}

// Label returns the human readable label of d.
func (d DirectionalKind) Label() string {
	switch d {
	case Taught:
		return "taught"
	case Premiered:
		return "premiered role in"
	case Authored:
		return "authored"
	case Composed:
		return "composed"
	case Edited:
		return "edited"
	case Parent:
		return "child of"
	case ParentOf:
		return "parent of"
	case Spouse:
		return "spouse of"
	case Grandparent:
		return "grandchild of"
	case GrandparentOf:
		return "grandparent of"
	case Sibling:
		return "sibling of"
	}
	return "related to"
}

// Qualifier returns the canonical qualifier text of a family kind, the
// inverse of Classify for family records.
func (d DirectionalKind) Qualifier() string {
	switch d {
	case Parent:
		return "parent"
	case ParentOf:
		return "parent of"
	case Spouse:
		return "spouse"
	case Grandparent:
		return "grandparent"
	case GrandparentOf:
		return "grandparent of"
	case Sibling:
		return "sibling"
	}
	return ""
}
