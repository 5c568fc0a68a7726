package common

import (
	"strings"
)

// EntityKind is the variant of a graph-store node.
type EntityKind string

const (
	KindPerson EntityKind = "person"
	KindOpera  EntityKind = "opera"
	KindBook   EntityKind = "book"
)

// ParseEntityKind maps a loosely typed kind string from a request or a
// store label onto the closed set of entity kinds.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "people", "singer":
		return KindPerson, true
	case "opera", "operas":
		return KindOpera, true
	case "book", "books":
		return KindBook, true
	}
	return "", false
}

// Well known attribute keys read from the store.
const (
	AttrVoiceType = "voice_type"
	AttrBirthYear = "birth_year"
	AttrDeathYear = "death_year"
	AttrComposer  = "composer"
	AttrAuthor    = "author"
)

// Entity represents a node in the lineage graph. People are keyed by their
// full name, works by their title. Entities are read-only for this service;
// all sourced attributes are carried as strings.
type Entity struct {
	Kind       EntityKind        `json:"kind" yaml:"kind"`
	Name       string            `json:"name" yaml:"name"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

func (e Entity) attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

func (e Entity) VoiceType() string { return e.attr(AttrVoiceType) }
func (e Entity) BirthYear() string { return e.attr(AttrBirthYear) }
func (e Entity) DeathYear() string { return e.attr(AttrDeathYear) }
func (e Entity) Composer() string  { return e.attr(AttrComposer) }
func (e Entity) Author() string    { return e.attr(AttrAuthor) }

// IsPerson reports whether the entity is a person.
func (e Entity) IsPerson() bool {
	return e.Kind == KindPerson
}

// NodeID returns the natural-key identifier used by assembled graphs. Works
// are prefixed with their kind so that a person and a work sharing a name do
// not collide.
func (e Entity) NodeID() string {
	return NodeID(e.Kind, e.Name)
}

// NodeID builds the natural-key identifier for a kind and name.
func NodeID(kind EntityKind, name string) string {
	switch kind {
	case KindOpera:
		return "opera_" + name
	case KindBook:
		return "book_" + name
	default:
		return name
	}
}

// Summary is the reduced entity view attached to path steps.
type Summary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      EntityKind `json:"kind"`
	VoiceType string     `json:"voiceType,omitempty"`
	BirthYear string     `json:"birthYear,omitempty"`
	DeathYear string     `json:"deathYear,omitempty"`
}

// Summarize returns the summary view of an entity.
func (e Entity) Summarize() Summary {
	return Summary{
		ID:        e.NodeID(),
		Name:      e.Name,
		Kind:      e.Kind,
		VoiceType: e.VoiceType(),
		BirthYear: e.BirthYear(),
		DeathYear: e.DeathYear(),
	}
}

// RelationKind is the stored type of a relationship record.
type RelationKind string

const (
	RelTaught          RelationKind = "TAUGHT"
	RelParent          RelationKind = "PARENT"
	RelSpouse          RelationKind = "SPOUSE"
	RelSibling         RelationKind = "SIBLING"
	RelGrandparent     RelationKind = "GRANDPARENT"
	RelFamily          RelationKind = "FAMILY"
	RelPremieredRoleIn RelationKind = "PREMIERED_ROLE_IN"
	RelAuthored        RelationKind = "AUTHORED"
	RelWrote           RelationKind = "WROTE"
	RelEdited          RelationKind = "EDITED"
)

// PathKinds is the set of relationship kinds path finding may traverse.
var PathKinds = []RelationKind{
	RelTaught,
	RelParent,
	RelSpouse,
	RelSibling,
	RelGrandparent,
	RelFamily,
	RelPremieredRoleIn,
	RelAuthored,
	RelWrote,
	RelEdited,
}

// ParseRelationKind maps a raw store relationship type onto the closed set of
// kinds. "COMPOSED" is accepted as an alias of WROTE.
func ParseRelationKind(s string) (RelationKind, bool) {
	k := RelationKind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case RelTaught, RelParent, RelSpouse, RelSibling, RelGrandparent, RelFamily,
		RelPremieredRoleIn, RelAuthored, RelWrote, RelEdited:
		return k, true
	case "COMPOSED":
		return RelWrote, true
	}
	return "", false
}

// IsFamily reports whether records of this kind carry a family qualifier.
func (k RelationKind) IsFamily() bool {
	switch k {
	case RelParent, RelSpouse, RelSibling, RelGrandparent, RelFamily:
		return true
	}
	return false
}

// IsWork reports whether the kind links a person to a work.
func (k RelationKind) IsWork() bool {
	switch k {
	case RelPremieredRoleIn, RelAuthored, RelWrote, RelEdited:
		return true
	}
	return false
}

// Citation holds the provenance fields of a relationship record in the
// order they are consulted.
type Citation struct {
	Structured string `json:"structured,omitempty" yaml:"structured,omitempty"`
	Generic    string `json:"generic,omitempty" yaml:"generic,omitempty"`
	Legacy     string `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Text returns the best available citation text. The second result is false
// when no field carries one.
func (c Citation) Text() (string, bool) {
	for _, s := range []string{c.Structured, c.Generic, c.Legacy} {
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// Relationship represents a directed edge fact as stored. Source and Target
// are in the store's native direction.
type Relationship struct {
	Kind      RelationKind `json:"kind"`
	Source    Entity       `json:"source"`
	Target    Entity       `json:"target"`
	Qualifier string       `json:"qualifier,omitempty"`
	Role      string       `json:"role,omitempty"`
	Citation  Citation     `json:"citation"`
}

// Path is a raw traversal result: Nodes[i] and Nodes[i+1] are joined by
// Edges[i], whose own Source/Target keep the native direction.
type Path struct {
	Nodes []Entity
	Edges []Relationship
}

// Len returns the number of edges on the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Edges)
}

// FamilyMember is one entry of a neighborhood's family list. Qualifier is
// read from the center's point of view.
type FamilyMember struct {
	Entity    Entity   `json:"entity"`
	Qualifier string   `json:"relationship"`
	Citation  Citation `json:"citation"`
}

// RelatedWork is a work in a neighborhood together with the role sung or the
// citation for the link.
type RelatedWork struct {
	Entity   Entity   `json:"entity"`
	Role     string   `json:"role,omitempty"`
	Citation Citation `json:"citation"`
}

// Works groups the works attached to a neighborhood center.
type Works struct {
	Operas         []RelatedWork `json:"operas"`
	Books          []RelatedWork `json:"books"`
	ComposedOperas []RelatedWork `json:"composedOperas"`
	EditedBooks    []RelatedWork `json:"editedBooks,omitempty"`
}

// Neighborhood is the set of directly related entities of one center.
type Neighborhood struct {
	Center   Entity         `json:"center"`
	Teachers []Entity       `json:"teachers"`
	Students []Entity       `json:"students"`
	Family   []FamilyMember `json:"family"`
	Works    Works          `json:"works"`

	// Related holds the people linked to a work center (premiering singers,
	// composer, authors, editors), as relationships with the work as target.
	Related []Relationship `json:"related,omitempty"`
	// Lineage holds the second-degree taught records of a depth 2 fetch:
	// teachers of teachers and students of students.
	Lineage []Relationship `json:"lineage,omitempty"`
}
