package pathcache

import (
	"strconv"
	"sync"
	"time"

	"github.com/vocal-lineage/backend/pkg/logger"
	"github.com/vocal-lineage/backend/pkg/names"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultTTL         = 10 * time.Minute
	DefaultNegativeTTL = 2 * time.Minute
)

// Clock abstracts time so expiry can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Entry is one cached resolution attempt. Negative entries record that no
// path (or no endpoint) was found; their payload carries the reason.
type Entry struct {
	Key        string
	Payload    []byte
	RecordedAt time.Time
	Negative   bool
}

// Cache stores path results keyed by normalized endpoints and hop limit.
// Expiry is evaluated lazily on Get; nothing runs in the background. It is
// safe for concurrent use and the last Put for a key wins.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	ttl         time.Duration
	negativeTTL time.Duration
	clock       Clock
	lookups     *prometheus.CounterVec
}

// NewCacheParams configures a Cache. Zero durations fall back to the
// defaults and a nil clock to the system clock.
type NewCacheParams struct {
	TTL         time.Duration
	NegativeTTL time.Duration
	Clock       Clock
	// Registerer receives the lookup counter. It may be nil.
	Registerer prometheus.Registerer
}

// NewCache creates an empty cache.
func NewCache(params NewCacheParams) *Cache {
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	negativeTTL := params.NegativeTTL
	if negativeTTL <= 0 {
		negativeTTL = DefaultNegativeTTL
	}
	if negativeTTL >= ttl {
		clamped := ttl / (DefaultTTL / DefaultNegativeTTL)
		logger.Warn("[Cache] Negative TTL must be below positive TTL, clamping", "ttl", ttl, "negative_ttl", negativeTTL, "clamped", clamped)
		negativeTTL = clamped
	}
	clock := params.Clock
	if clock == nil {
		clock = SystemClock
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_path_cache_lookups_total",
		Help: "Path cache lookups by result",
	}, []string{"result"})
	if params.Registerer != nil {
		if err := params.Registerer.Register(lookups); err != nil {
			logger.Warn("[Cache] Failed to register metrics", "err", err)
		}
	}

	return &Cache{
		entries:     make(map[string]Entry),
		ttl:         ttl,
		negativeTTL: negativeTTL,
		clock:       clock,
		lookups:     lookups,
	}
}

// Key derives the cache key of a request.
func Key(from, to string, hops int) string {
	return names.Normalize(from) + "\x00" + names.Normalize(to) + "\x00" + strconv.Itoa(hops)
}

// Get returns the live entry for the request, if any. Stale entries are
// skipped, not removed; the next Put overwrites them.
func (c *Cache) Get(from, to string, hops int) (Entry, bool) {
	key := Key(from, to, hops)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.lookups.WithLabelValues("miss").Inc()
		return Entry{}, false
	}

	ttl := c.ttl
	if entry.Negative {
		ttl = c.negativeTTL
	}
	if c.clock.Now().Sub(entry.RecordedAt) >= ttl {
		c.lookups.WithLabelValues("expired").Inc()
		return Entry{}, false
	}

	if entry.Negative {
		c.lookups.WithLabelValues("negative_hit").Inc()
	} else {
		c.lookups.WithLabelValues("hit").Inc()
	}
	return entry, true
}

// Put records a resolution attempt.
func (c *Cache) Put(from, to string, hops int, payload []byte, negative bool) Entry {
	entry := Entry{
		Key:        Key(from, to, hops),
		Payload:    payload,
		RecordedAt: c.clock.Now(),
		Negative:   negative,
	}

	c.mu.Lock()
	c.entries[entry.Key] = entry
	c.mu.Unlock()

	return entry
}

// Len returns the number of stored entries, live or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
