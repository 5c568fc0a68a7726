package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/names"
)

// Lookup finds the entity of kind called name. An exact key match wins;
// otherwise the name is resolved against the store's candidates.
func Lookup(ctx context.Context, s GraphStore, kind common.EntityKind, name string) (common.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.Entity{}, fmt.Errorf("%s name is required: %w", kind, common.ErrInvalidInput)
	}

	e, ok, err := s.Entity(ctx, kind, name)
	if err != nil {
		return common.Entity{}, err
	}
	if ok {
		return e, nil
	}

	candidates, err := s.Candidates(ctx, kind, name)
	if err != nil {
		return common.Entity{}, err
	}
	return names.Resolve(name, candidates)
}
