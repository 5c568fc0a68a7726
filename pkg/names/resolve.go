package names

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vocal-lineage/backend/pkg/common"
)

// Tier is the matching tier a candidate qualified under. Lower is better.
type Tier int

const (
	TierExact Tier = iota + 1
	TierContains
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierContains:
		return "contains"
	}
	return "none"
}

// Match is a candidate entity together with the tier it matched under.
type Match struct {
	Entity   common.Entity `json:"entity"`
	Tier     Tier          `json:"-"`
	TierName string        `json:"tier"`

	normalized string
}

// Rank returns every candidate that matches query under some tier, best
// first. Exact matches precede containment matches; within a tier shorter
// names win, then the lexical order of the normalized and raw names.
func Rank(query string, candidates []common.Entity) []Match {
	q := Normalize(query)
	if q == "" {
		return nil
	}

	matches := make([]Match, 0)
	for _, c := range candidates {
		n := Normalize(c.Name)
		if n == "" {
			continue
		}

		var tier Tier
		switch {
		case n == q:
			tier = TierExact
		case strings.Contains(n, q) || strings.Contains(q, n):
			tier = TierContains
		default:
			continue
		}
		matches = append(matches, Match{
			Entity:     c,
			Tier:       tier,
			TierName:   tier.String(),
			normalized: n,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		la, lb := utf8.RuneCountInString(a.normalized), utf8.RuneCountInString(b.normalized)
		if la != lb {
			return la < lb
		}
		if a.normalized != b.normalized {
			return a.normalized < b.normalized
		}
		return a.Entity.Name < b.Entity.Name
	})

	return matches
}

// Resolve maps a free-text name to a single canonical entity. The first
// non-empty tier wins. An empty query is an input error; no match at all is
// ErrNotFound.
func Resolve(query string, candidates []common.Entity) (common.Entity, error) {
	if Normalize(query) == "" {
		return common.Entity{}, fmt.Errorf("empty name: %w", common.ErrInvalidInput)
	}

	matches := Rank(query, candidates)
	if len(matches) == 0 {
		return common.Entity{}, fmt.Errorf("no entity matches %q: %w", strings.TrimSpace(query), common.ErrNotFound)
	}

	return matches[0].Entity, nil
}
