package neo4j

import (
	"testing"

	"github.com/vocal-lineage/backend/pkg/common"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personNode(id, name string) neo4j.Node {
	return neo4j.Node{
		ElementId: id,
		Labels:    []string{"Person"},
		Props:     map[string]any{"full_name": name, "birth_year": int64(1805)},
	}
}

func TestToEntity(t *testing.T) {
	e, ok := toEntity(personNode("1", "Manuel Garcia"))
	require.True(t, ok)
	assert.Equal(t, common.KindPerson, e.Kind)
	assert.Equal(t, "Manuel Garcia", e.Name)
	assert.Equal(t, "1805", e.BirthYear())
	_, hasKey := e.Attributes["full_name"]
	assert.False(t, hasKey)

	e, ok = toEntity(neo4j.Node{Labels: []string{"Opera"}, Props: map[string]any{"title": "Carmen", "composer": "Georges Bizet"}})
	require.True(t, ok)
	assert.Equal(t, "opera_Carmen", e.NodeID())
	assert.Equal(t, "Georges Bizet", e.Composer())

	_, ok = toEntity(neo4j.Node{Labels: []string{"Venue"}, Props: map[string]any{"title": "La Scala"}})
	assert.False(t, ok)

	_, ok = toEntity(neo4j.Node{Labels: []string{"Person"}, Props: map[string]any{"name": "no key"}})
	assert.False(t, ok)
}

func TestToRelationship(t *testing.T) {
	start := personNode("1", "Manuel Garcia")
	end := personNode("2", "Mathilde Marchesi")

	rel, ok := toRelationship(neo4j.Relationship{
		Type: "TAUGHT",
		Props: map[string]any{
			"teaching_citation": "Grove",
			"citation":          "generic",
			"source":            "legacy",
			"citation_url":      "https://example.org",
		},
	}, start, end)
	require.True(t, ok)
	assert.Equal(t, common.RelTaught, rel.Kind)
	assert.Equal(t, "Manuel Garcia", rel.Source.Name)
	assert.Equal(t, "Mathilde Marchesi", rel.Target.Name)
	text, ok := rel.Citation.Text()
	require.True(t, ok)
	assert.Equal(t, "Grove", text)
	assert.Equal(t, "https://example.org", rel.Citation.URL)

	rel, ok = toRelationship(neo4j.Relationship{
		Type:  "FAMILY",
		Props: map[string]any{"relationship_type": "grandparent of", "source": "parish register"},
	}, start, end)
	require.True(t, ok)
	assert.Equal(t, "grandparent of", rel.Qualifier)
	text, _ = rel.Citation.Text()
	assert.Equal(t, "parish register", text)

	_, ok = toRelationship(neo4j.Relationship{Type: "INFLUENCED"}, start, end)
	assert.False(t, ok)
}

func TestToPath_KeepsNativeDirection(t *testing.T) {
	a := personNode("a", "Emma Calve")
	b := personNode("b", "Mathilde Marchesi")
	c := personNode("c", "Manuel Garcia")

	p := neo4j.Path{
		Nodes: []neo4j.Node{a, b, c},
		Relationships: []neo4j.Relationship{
			{ElementId: "r1", Type: "TAUGHT", StartElementId: "b", EndElementId: "a"},
			{ElementId: "r2", Type: "TAUGHT", StartElementId: "c", EndElementId: "b"},
		},
	}

	path, err := toPath(p)
	require.NoError(t, err)
	require.Equal(t, 2, path.Len())
	assert.Equal(t, "Emma Calve", path.Nodes[0].Name)
	assert.Equal(t, "Mathilde Marchesi", path.Edges[0].Source.Name)
	assert.Equal(t, "Emma Calve", path.Edges[0].Target.Name)
	assert.Equal(t, "Manuel Garcia", path.Edges[1].Source.Name)
}

func TestToPath_Malformed(t *testing.T) {
	_, err := toPath(neo4j.Path{Nodes: []neo4j.Node{personNode("a", "A")}, Relationships: []neo4j.Relationship{{Type: "TAUGHT"}}})
	assert.Error(t, err)
}

func TestRelTypes(t *testing.T) {
	assert.Equal(t, "TAUGHT|SPOUSE", relTypes([]common.RelationKind{common.RelSpouse, common.RelTaught}))
	assert.Contains(t, relTypes(nil), "PREMIERED_ROLE_IN")
	assert.Equal(t, "", relTypes([]common.RelationKind{"INFLUENCED"}))
}
