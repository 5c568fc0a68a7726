package names

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocal-lineage/backend/pkg/common"
)

func person(name string) common.Entity {
	return common.Entity{Kind: common.KindPerson, Name: name}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"OnlySpaces", "   \t ", ""},
		{"Lowercase", "Manuel GARCIA", "manuel garcia"},
		{"Umlauts", "Lotte Lehmann-Müller ÄÖÜ", "lotte lehmann-muller aou"},
		{"Eszett", "Strauß", "strauss"},
		{"Accents", "Mathilde Marchési", "mathilde marchesi"},
		{"Cedilla", "François", "francois"},
		{"CollapseWhitespace", "  Pauline   Viardot ", "pauline viardot"},
		{"Nordic", "Jussi Bjørling", "jussi bjorling"},
		{"UppercaseNordic", "BJØRLING", "bjorling"},
		{"CapitalEszett", "STRAUẞ", "strauss"},
		{"DottedCapitalI", "İstanbul", "istanbul"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestResolve(t *testing.T) {
	candidates := []common.Entity{
		person("Manuel García"),
		person("Manuel Patricio Rodríguez García"),
		person("Pauline Viardot-García"),
		person("Garcia"),
		person("Mathilde Marchesi"),
		person("Salvatore Marchesi"),
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"ExactWithDiacritics", "manuel garcía", "Manuel García"},
		{"ExactFoldsDiacritics", "Manuel Garcia", "Manuel García"},
		{"ExactBeatsContainment", "garcia", "Garcia"},
		{"ContainmentPrefersShortest", "marchesi", "Mathilde Marchesi"},
		{"QueryContainsCandidate", "Mathilde Marchesi de Castrone", "Mathilde Marchesi"},
		{"TrimmedInput", "   Pauline Viardot-García  ", "Pauline Viardot-García"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.query, candidates)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Name)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	_, err := Resolve("Caruso", []common.Entity{person("Manuel García")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestResolve_EmptyQueryIsInputError(t *testing.T) {
	_, err := Resolve("  ", []common.Entity{person("Manuel García")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.False(t, errors.Is(err, common.ErrNotFound))
}

func TestResolve_Idempotent(t *testing.T) {
	candidates := []common.Entity{
		person("Jenny Lind"),
		person("Lind"),
		person("Jenny Lind-Goldschmidt"),
		person("Müller"),
		person("Muller"),
	}

	for _, alias := range []string{"jenny", "LIND", "goldschmidt", "muller", "MÜLLER", "jenny lind"} {
		first, err := Resolve(alias, candidates)
		require.NoError(t, err, alias)

		second, err := Resolve(first.Name, candidates)
		require.NoError(t, err, alias)
		assert.Equal(t, first, second, "alias %q", alias)
	}
}

func TestRank_Order(t *testing.T) {
	candidates := []common.Entity{
		person("Anna Schoen-René"),
		person("René"),
		person("Rene Maison"),
	}

	got := Rank("rene", candidates)
	require.Len(t, got, 3)
	assert.Equal(t, "René", got[0].Entity.Name)
	assert.Equal(t, TierExact, got[0].Tier)
	assert.Equal(t, "Rene Maison", got[1].Entity.Name)
	assert.Equal(t, TierContains, got[1].Tier)
	assert.Equal(t, "Anna Schoen-René", got[2].Entity.Name)
}

func TestRank_SkipsEmptyCandidateNames(t *testing.T) {
	got := Rank("garcia", []common.Entity{person(""), person("  ")})
	assert.Empty(t, got)
}
