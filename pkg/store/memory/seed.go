package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML layout of a store fixture.
type Seed struct {
	People        []SeedEntity       `yaml:"people"`
	Operas        []SeedEntity       `yaml:"operas"`
	Books         []SeedEntity       `yaml:"books"`
	Relationships []SeedRelationship `yaml:"relationships"`
}

type SeedEntity struct {
	Name       string            `yaml:"name"`
	Attributes map[string]string `yaml:"attributes"`
}

// SeedRelationship references its endpoints by name. FromKind defaults to
// person; ToKind defaults to the natural target of the relationship kind.
type SeedRelationship struct {
	Kind      string          `yaml:"kind"`
	From      string          `yaml:"from"`
	FromKind  string          `yaml:"from_kind"`
	To        string          `yaml:"to"`
	ToKind    string          `yaml:"to_kind"`
	Qualifier string          `yaml:"qualifier"`
	Role      string          `yaml:"role"`
	Citation  common.Citation `yaml:"citation"`
}

// LoadFile builds a store from a YAML seed file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load builds a store from a YAML seed. Relationships with a kind outside
// the known vocabulary are logged and skipped.
func Load(r io.Reader) (*Store, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	s := New()
	add := func(kind common.EntityKind, in []SeedEntity) {
		for _, e := range in {
			s.AddEntity(common.Entity{Kind: kind, Name: e.Name, Attributes: e.Attributes})
		}
	}
	add(common.KindPerson, seed.People)
	add(common.KindOpera, seed.Operas)
	add(common.KindBook, seed.Books)

	for i, sr := range seed.Relationships {
		kind, ok := common.ParseRelationKind(sr.Kind)
		if !ok {
			logger.Warn("[Store] Skipping relationship of unknown kind", "index", i, "kind", sr.Kind)
			continue
		}

		fromKind := common.KindPerson
		if sr.FromKind != "" {
			if fromKind, ok = common.ParseEntityKind(sr.FromKind); !ok {
				return nil, fmt.Errorf("relationship %d: unknown from_kind %q", i, sr.FromKind)
			}
		}
		toKind := defaultTargetKind(kind)
		if sr.ToKind != "" {
			if toKind, ok = common.ParseEntityKind(sr.ToKind); !ok {
				return nil, fmt.Errorf("relationship %d: unknown to_kind %q", i, sr.ToKind)
			}
		}

		err := s.AddRelationship(common.Relationship{
			Kind:      kind,
			Source:    common.Entity{Kind: fromKind, Name: sr.From},
			Target:    common.Entity{Kind: toKind, Name: sr.To},
			Qualifier: sr.Qualifier,
			Role:      sr.Role,
			Citation:  sr.Citation,
		})
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
	}

	logger.Debug("[Store] Seed loaded", "entities", len(s.order), "relationships", len(s.rels))

	return s, nil
}

func defaultTargetKind(kind common.RelationKind) common.EntityKind {
	switch kind {
	case common.RelPremieredRoleIn, common.RelWrote:
		return common.KindOpera
	case common.RelAuthored, common.RelEdited:
		return common.KindBook
	}
	return common.KindPerson
}
