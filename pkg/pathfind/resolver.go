package pathfind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vocal-lineage/backend/pkg/common"
	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/names"
	"github.com/vocal-lineage/backend/pkg/pathcache"
	"github.com/vocal-lineage/backend/pkg/store"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxHops = 8
	HardCap        = 12
)

// ClampHops bounds a requested hop limit to [0, HardCap].
func ClampHops(hops int) int {
	if hops < 0 {
		return 0
	}
	if hops > HardCap {
		return HardCap
	}
	return hops
}

// Resolver answers path queries between two loosely named people.
type Resolver struct {
	store store.GraphStore
	cache *pathcache.Cache
	kinds []common.RelationKind
}

type NewResolverParams struct {
	Store store.GraphStore
	// Cache may be nil, in which case a default cache is created.
	Cache *pathcache.Cache
	// Kinds restricts the traversable relationship kinds. Empty means every
	// path kind.
	Kinds []common.RelationKind
}

func NewResolver(params NewResolverParams) *Resolver {
	cache := params.Cache
	if cache == nil {
		cache = pathcache.NewCache(pathcache.NewCacheParams{})
	}
	return &Resolver{
		store: params.Store,
		cache: cache,
		kinds: params.Kinds,
	}
}

// FindPath resolves both names and returns the oriented shortest path.
func (r *Resolver) FindPath(ctx context.Context, from, to string, maxHops int) (*Result, error) {
	payload, err := r.FindPathPayload(ctx, from, to, maxHops)
	if err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("failed to decode path payload: %w", err)
	}
	return &res, nil
}

// FindPathPayload is FindPath returning the encoded result. Repeated calls
// within the cache TTL return identical bytes without touching the store.
// Each call gets its own copy.
//
// Errors wrap common.ErrInvalidInput for blank names, common.ErrNotFound
// when an endpoint or a path within the hop limit is missing (cached), and
// common.ErrStore when the store fails (never cached).
func (r *Resolver) FindPathPayload(ctx context.Context, from, to string, maxHops int) ([]byte, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, fmt.Errorf("both endpoints are required: %w", common.ErrInvalidInput)
	}
	hops := ClampHops(maxHops)

	if entry, ok := r.cache.Get(from, to, hops); ok {
		logger.Debug("[Path] Cache hit", "from", from, "to", to, "hops", hops, "negative", entry.Negative)
		if entry.Negative {
			return nil, fmt.Errorf("%s: %w", entry.Payload, common.ErrNotFound)
		}
		return bytes.Clone(entry.Payload), nil
	}

	source, target, err := r.resolveEndpoints(ctx, from, to)
	if err != nil {
		var unresolved unresolvedError
		if errors.As(err, &unresolved) {
			return nil, r.miss(from, to, hops, unresolved.Error())
		}
		return nil, err
	}

	var path *common.Path
	switch {
	case source.NodeID() == target.NodeID():
		path = &common.Path{Nodes: []common.Entity{source}}
	case hops == 0:
		return nil, r.miss(from, to, hops, "no path within 0 hops")
	default:
		path, err = r.store.ShortestPath(ctx, source, target, hops, r.kinds)
		if err != nil {
			return nil, err
		}
		if path == nil {
			return nil, r.miss(from, to, hops, fmt.Sprintf("no path between %q and %q within %d hops", source.Name, target.Name, hops))
		}
	}

	payload, err := json.Marshal(buildResult(path))
	if err != nil {
		return nil, fmt.Errorf("failed to encode path payload: %w", err)
	}
	r.cache.Put(from, to, hops, bytes.Clone(payload), false)

	logger.Debug("[Path] Resolved", "from", source.Name, "to", target.Name, "hops", hops, "length", path.Len())

	return payload, nil
}

// miss records a negative cache entry and returns the matching NotFound.
func (r *Resolver) miss(from, to string, hops int, reason string) error {
	r.cache.Put(from, to, hops, []byte(reason), true)
	logger.Debug("[Path] Not found", "from", from, "to", to, "hops", hops, "reason", reason)
	return fmt.Errorf("%s: %w", reason, common.ErrNotFound)
}

// resolveEndpoints resolves both names against the person subgraph in
// parallel, each with its own store call.
func (r *Resolver) resolveEndpoints(ctx context.Context, from, to string) (common.Entity, common.Entity, error) {
	var source, target common.Entity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := r.resolvePerson(gctx, from)
		source = e
		return err
	})
	g.Go(func() error {
		e, err := r.resolvePerson(gctx, to)
		target = e
		return err
	})
	if err := g.Wait(); err != nil {
		return common.Entity{}, common.Entity{}, err
	}
	return source, target, nil
}

type unresolvedError struct {
	name string
}

func (e unresolvedError) Error() string {
	return fmt.Sprintf("no person matches %q", e.name)
}

func (r *Resolver) resolvePerson(ctx context.Context, name string) (common.Entity, error) {
	candidates, err := r.store.Candidates(ctx, common.KindPerson, name)
	if err != nil {
		return common.Entity{}, err
	}
	e, err := names.Resolve(name, candidates)
	if errors.Is(err, common.ErrNotFound) {
		return common.Entity{}, unresolvedError{name: name}
	}
	return e, err
}
