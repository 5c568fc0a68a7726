package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vocal-lineage/backend/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
people:
  - name: Manuel Garcia
    attributes:
      voice_type: tenor
  - name: Mathilde Marchesi
    attributes:
      voice_type: mezzo-soprano
  - name: Blanche Marchesi
  - name: Emma Calve
  - name: Pauline Viardot
operas:
  - name: Carmen
    attributes:
      composer: Georges Bizet
books:
  - name: Ten Singing Lessons
relationships:
  - kind: TAUGHT
    from: Manuel Garcia
    to: Mathilde Marchesi
    citation:
      structured: Grove 2001
  - kind: TAUGHT
    from: Mathilde Marchesi
    to: Emma Calve
  - kind: PARENT
    from: Blanche Marchesi
    to: Mathilde Marchesi
    qualifier: parent
  - kind: SIBLING
    from: Manuel Garcia
    to: Pauline Viardot
  - kind: PREMIERED_ROLE_IN
    from: Emma Calve
    to: Carmen
    role: Carmen
  - kind: AUTHORED
    from: Mathilde Marchesi
    to: Ten Singing Lessons
  - kind: INFLUENCED
    from: Emma Calve
    to: Manuel Garcia
`

func loadFixture(t *testing.T) *Store {
	t.Helper()
	s, err := Load(strings.NewReader(fixture))
	require.NoError(t, err)
	return s
}

func person(name string) common.Entity {
	return common.Entity{Kind: common.KindPerson, Name: name}
}

func TestLoad(t *testing.T) {
	s := loadFixture(t)

	assert.Len(t, s.order, 7)
	// the INFLUENCED record is dropped
	assert.Len(t, s.rels, 6)

	opera, ok, err := s.Entity(context.Background(), common.KindOpera, "Carmen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Georges Bizet", opera.Composer())
}

func TestLoad_UnknownEndpoint(t *testing.T) {
	_, err := Load(strings.NewReader(`
people:
  - name: A
relationships:
  - kind: TAUGHT
    from: A
    to: B
`))
	require.Error(t, err)
}

func TestShortestPath(t *testing.T) {
	s := loadFixture(t)
	ctx := context.Background()

	path, err := s.ShortestPath(ctx, person("Manuel Garcia"), person("Emma Calve"), 8, nil)
	require.NoError(t, err)
	require.NotNil(t, path)
	require.Equal(t, 2, path.Len())
	assert.Equal(t, "Manuel Garcia", path.Nodes[0].Name)
	assert.Equal(t, "Mathilde Marchesi", path.Nodes[1].Name)
	assert.Equal(t, "Emma Calve", path.Nodes[2].Name)
	assert.Equal(t, common.RelTaught, path.Edges[0].Kind)
}

func TestShortestPath_UndirectedTraversal(t *testing.T) {
	s := loadFixture(t)

	path, err := s.ShortestPath(context.Background(), person("Emma Calve"), person("Pauline Viardot"), 8, nil)
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.Equal(t, 3, path.Len())
	// edges keep their native direction
	assert.Equal(t, "Mathilde Marchesi", path.Edges[0].Source.Name)
	assert.Equal(t, "Emma Calve", path.Edges[0].Target.Name)
}

func TestShortestPath_HopBound(t *testing.T) {
	s := loadFixture(t)
	ctx := context.Background()

	path, err := s.ShortestPath(ctx, person("Manuel Garcia"), person("Emma Calve"), 1, nil)
	require.NoError(t, err)
	assert.Nil(t, path)

	path, err = s.ShortestPath(ctx, person("Manuel Garcia"), person("Mathilde Marchesi"), 0, nil)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestShortestPath_KindFilter(t *testing.T) {
	s := loadFixture(t)

	path, err := s.ShortestPath(
		context.Background(),
		person("Blanche Marchesi"),
		person("Emma Calve"),
		8,
		[]common.RelationKind{common.RelTaught},
	)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestShortestPath_SameEntity(t *testing.T) {
	s := loadFixture(t)

	path, err := s.ShortestPath(context.Background(), person("Manuel Garcia"), person("Manuel Garcia"), 0, nil)
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.Equal(t, 0, path.Len())
	assert.Len(t, path.Nodes, 1)
}

func TestNeighborhood(t *testing.T) {
	s := loadFixture(t)

	n, err := s.Neighborhood(context.Background(), person("Mathilde Marchesi"), 1)
	require.NoError(t, err)

	require.Len(t, n.Teachers, 1)
	assert.Equal(t, "Manuel Garcia", n.Teachers[0].Name)
	require.Len(t, n.Students, 1)
	assert.Equal(t, "Emma Calve", n.Students[0].Name)
	require.Len(t, n.Works.Books, 1)
	assert.Equal(t, "Ten Singing Lessons", n.Works.Books[0].Entity.Name)

	// Blanche names Mathilde as her parent, so from Mathilde's side Blanche
	// is her child.
	require.Len(t, n.Family, 1)
	assert.Equal(t, "Blanche Marchesi", n.Family[0].Entity.Name)
	assert.Equal(t, "parent of", n.Family[0].Qualifier)
	assert.Empty(t, n.Lineage)
}

func TestNeighborhood_Lineage(t *testing.T) {
	s := loadFixture(t)

	n, err := s.Neighborhood(context.Background(), person("Emma Calve"), 2)
	require.NoError(t, err)

	require.Len(t, n.Lineage, 1)
	assert.Equal(t, "Manuel Garcia", n.Lineage[0].Source.Name)
	assert.Equal(t, "Mathilde Marchesi", n.Lineage[0].Target.Name)
}

func TestNeighborhood_WorkCenter(t *testing.T) {
	s := loadFixture(t)

	n, err := s.Neighborhood(context.Background(), common.Entity{Kind: common.KindOpera, Name: "Carmen"}, 1)
	require.NoError(t, err)
	require.Len(t, n.Related, 1)
	assert.Equal(t, "Emma Calve", n.Related[0].Source.Name)
	assert.Equal(t, "Carmen", n.Related[0].Role)
}

func TestNeighborhood_NotFound(t *testing.T) {
	s := loadFixture(t)

	_, err := s.Neighborhood(context.Background(), person("Nobody"), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestCanceledContextIsStoreError(t *testing.T) {
	s := loadFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Candidates(ctx, common.KindPerson, "garcia")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStore))
}
