package graph

import (
	"errors"
	"testing"

	"github.com/vocal-lineage/backend/pkg/classify"
	"github.com/vocal-lineage/backend/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(name string) common.Entity {
	return common.Entity{Kind: common.KindPerson, Name: name}
}

func marchesi() *common.Neighborhood {
	return &common.Neighborhood{
		Center: common.Entity{
			Kind:       common.KindPerson,
			Name:       "Mathilde Marchesi",
			Attributes: map[string]string{common.AttrVoiceType: "mezzo-soprano"},
		},
		Teachers: []common.Entity{person("Manuel Garcia")},
		Students: []common.Entity{person("Emma Calve"), person("Nellie Melba")},
		Family: []common.FamilyMember{
			{Entity: person("Blanche Marchesi"), Qualifier: "parent of"},
			{Entity: person("Salvatore Marchesi"), Qualifier: "spouse"},
			{Entity: person("Someone Else"), Qualifier: "godmother"},
		},
		Works: common.Works{
			Books: []common.RelatedWork{{Entity: common.Entity{Kind: common.KindBook, Name: "Ten Singing Lessons"}}},
		},
	}
}

func calve() *common.Neighborhood {
	return &common.Neighborhood{
		Center:   person("Emma Calve"),
		Teachers: []common.Entity{person("Mathilde Marchesi")},
		Works: common.Works{
			Operas: []common.RelatedWork{{Entity: common.Entity{Kind: common.KindOpera, Name: "Carmen"}, Role: "Carmen"}},
		},
	}
}

func nodeIDs(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func findEdge(edges []Edge, src, tgt string) (Edge, bool) {
	for _, e := range edges {
		if e.Source == src && e.Target == tgt {
			return e, true
		}
	}
	return Edge{}, false
}

func TestAssemble(t *testing.T) {
	g := Assemble(marchesi(), "Mathilde Marchesi", common.KindPerson)

	require.NotEmpty(t, g.Nodes)
	focal := g.Nodes[0]
	assert.Equal(t, "Mathilde Marchesi", focal.ID)
	assert.True(t, focal.IsFocal)
	assert.Equal(t, "mezzo-soprano", focal.Attributes[common.AttrVoiceType])

	// the unclassifiable relative is dropped
	assert.ElementsMatch(t, []string{
		"Mathilde Marchesi",
		"Manuel Garcia",
		"Emma Calve",
		"Nellie Melba",
		"Blanche Marchesi",
		"Salvatore Marchesi",
		"book_Ten Singing Lessons",
	}, nodeIDs(g.Nodes))
	assert.Len(t, g.Edges, 6)

	e, ok := findEdge(g.Edges, "Manuel Garcia", "Mathilde Marchesi")
	require.True(t, ok)
	assert.Equal(t, classify.Taught, e.Kind)

	e, ok = findEdge(g.Edges, "Mathilde Marchesi", "Emma Calve")
	require.True(t, ok)
	assert.Equal(t, classify.Taught, e.Kind)

	e, ok = findEdge(g.Edges, "Mathilde Marchesi", "Blanche Marchesi")
	require.True(t, ok)
	assert.Equal(t, classify.ParentOf, e.Kind)
	assert.Equal(t, "parent of", e.Label)

	e, ok = findEdge(g.Edges, "Mathilde Marchesi", "book_Ten Singing Lessons")
	require.True(t, ok)
	assert.Equal(t, classify.Authored, e.Kind)
}

func TestAssemble_WorkCenter(t *testing.T) {
	carmen := common.Entity{Kind: common.KindOpera, Name: "Carmen"}
	n := &common.Neighborhood{
		Center: carmen,
		Related: []common.Relationship{
			{Kind: common.RelPremieredRoleIn, Source: person("Emma Calve"), Target: carmen},
			{Kind: common.RelWrote, Source: person("Georges Bizet"), Target: carmen},
		},
	}

	g := Assemble(n, "Carmen", common.KindOpera)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, "opera_Carmen", g.Nodes[0].ID)
	assert.True(t, g.Nodes[0].IsFocal)

	e, ok := findEdge(g.Edges, "Georges Bizet", "opera_Carmen")
	require.True(t, ok)
	assert.Equal(t, classify.Composed, e.Kind)
}

func TestAssemble_DuplicateEntriesCollapse(t *testing.T) {
	n := marchesi()
	n.Students = append(n.Students, person("Emma Calve"))

	g := Assemble(n, "Mathilde Marchesi", common.KindPerson)
	count := 0
	for _, node := range g.Nodes {
		if node.ID == "Emma Calve" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, g.Edges, 6)
}

func TestMerge_OnlyAddsNewElements(t *testing.T) {
	g := Assemble(marchesi(), "Mathilde Marchesi", common.KindPerson)

	delta := Merge(g, calve(), person("Emma Calve"), Filter{})
	// Calve and Marchesi are already on the canvas, as is the taught edge.
	assert.Equal(t, []string{"opera_Carmen"}, nodeIDs(delta.Nodes))
	require.Len(t, delta.Edges, 1)
	assert.Equal(t, "Emma Calve", delta.Edges[0].Source)
	assert.Equal(t, "opera_Carmen", delta.Edges[0].Target)
	assert.Equal(t, classify.Premiered, delta.Edges[0].Kind)
}

func TestMerge_DoesNotMutateExisting(t *testing.T) {
	g := Assemble(marchesi(), "Mathilde Marchesi", common.KindPerson)
	before := g.Clone()

	_ = Apply(g, Merge(g, calve(), person("Emma Calve"), Filter{}))
	assert.Equal(t, before, g)
}

func TestMerge_Idempotent(t *testing.T) {
	g := Assemble(marchesi(), "Mathilde Marchesi", common.KindPerson)

	once := Apply(g, Merge(g, calve(), person("Emma Calve"), Filter{}))
	twice := Apply(once, Merge(once, calve(), person("Emma Calve"), Filter{}))

	assert.Equal(t, once, twice)
	assert.True(t, Merge(once, calve(), person("Emma Calve"), Filter{}).Empty())
}

func TestMerge_Filter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		nodes  []string
	}{
		{"teachers", "teachers", []string{"Mathilde Marchesi", "Manuel Garcia"}},
		{"students", "students", []string{"Mathilde Marchesi", "Emma Calve", "Nellie Melba"}},
		{"family", "family", []string{"Mathilde Marchesi", "Blanche Marchesi", "Salvatore Marchesi"}},
		{"single kind", "spouse", []string{"Mathilde Marchesi", "Salvatore Marchesi"}},
		{"works", "works", []string{"Mathilde Marchesi", "book_Ten Singing Lessons"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFilter(tt.filter)
			require.NoError(t, err)

			delta := Merge(Graph{}, marchesi(), person("Mathilde Marchesi"), filter)
			assert.ElementsMatch(t, tt.nodes, nodeIDs(delta.Nodes))
			assert.Len(t, delta.Edges, len(tt.nodes)-1)
		})
	}
}

func TestParseFilter_Unknown(t *testing.T) {
	_, err := ParseFilter("cousins")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	f, err := ParseFilter("grandparentOf")
	require.NoError(t, err)
	assert.Equal(t, classify.GrandparentOf, f.Kind)
}

func TestRetract(t *testing.T) {
	g := Assemble(marchesi(), "Mathilde Marchesi", common.KindPerson)

	isolated, err := Retract(g, "Emma Calve", Isolate)
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma Calve"}, nodeIDs(isolated.Nodes))
	assert.Empty(t, isolated.Edges)

	detached, err := Retract(g, "Mathilde Marchesi", Detach)
	require.NoError(t, err)
	assert.Len(t, detached.Nodes, len(g.Nodes)-1)
	assert.Empty(t, detached.Edges)
	assert.False(t, detached.HasNode("Mathilde Marchesi"))

	detached, err = Retract(g, "Emma Calve", Detach)
	require.NoError(t, err)
	assert.Len(t, detached.Edges, len(g.Edges)-1)

	// the input graph is untouched
	assert.True(t, g.HasNode("Emma Calve"))
}

func TestRetract_Errors(t *testing.T) {
	g := Assemble(marchesi(), "Mathilde Marchesi", common.KindPerson)

	_, err := Retract(g, "Nobody", Detach)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = Retract(g, "Emma Calve", RetractMode("explode"))
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = ParseRetractMode("Isolate")
	assert.NoError(t, err)
}
