package neo4j

import (
	"context"
	"sync"
	"time"

	"github.com/vocal-lineage/backend/pkg/common"

	"golang.org/x/sync/singleflight"
)

const DefaultCandidateTTL = 30 * time.Second

type candidateEntry struct {
	entities []common.Entity
	loadedAt time.Time
}

// candidateCache keeps the per-label candidate lists for a short while so
// name resolution does not scan a label on every request. Concurrent loads
// of the same label share one query.
type candidateCache struct {
	ttl  time.Duration
	now  func() time.Time
	load func(ctx context.Context, kind common.EntityKind) ([]common.Entity, error)

	mu      sync.RWMutex
	entries map[common.EntityKind]candidateEntry
	group   singleflight.Group
}

func newCandidateCache(ttl time.Duration, load func(context.Context, common.EntityKind) ([]common.Entity, error)) *candidateCache {
	if ttl <= 0 {
		ttl = DefaultCandidateTTL
	}
	return &candidateCache{
		ttl:     ttl,
		now:     time.Now,
		load:    load,
		entries: make(map[common.EntityKind]candidateEntry),
	}
}

// get returns the cached list of kind, loading it when absent or stale.
// Failed loads are not cached. Callers must not modify the returned slice.
func (c *candidateCache) get(ctx context.Context, kind common.EntityKind) ([]common.Entity, error) {
	c.mu.RLock()
	entry, ok := c.entries[kind]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.loadedAt) < c.ttl {
		return entry.entities, nil
	}

	v, err, _ := c.group.Do(string(kind), func() (any, error) {
		entities, err := c.load(ctx, kind)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[kind] = candidateEntry{entities: entities, loadedAt: c.now()}
		c.mu.Unlock()
		return entities, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]common.Entity), nil
}
