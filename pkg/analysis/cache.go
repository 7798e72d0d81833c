package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// DefaultCacheTTL is the default time-to-live for cached results.
const DefaultCacheTTL = 5 * time.Minute

// Cache holds the stats of the last analyzed keyword set, keyed by data hash.
// Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	dataHash   string
	stats      *GraphStats
	computedAt time.Time
	ttl        time.Duration
	now        func() time.Time
}

// NewCache creates a cache with the given TTL (DefaultCacheTTL when <= 0).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, now: time.Now}
}

// Get returns cached stats when ks hashes the same and the TTL has not expired.
func (c *Cache) Get(ks []model.Keyword) (*GraphStats, bool) {
	return c.GetByHash(ComputeDataHash(ks))
}

// GetByHash is Get with a precomputed hash.
func (c *Cache) GetByHash(hash string) (*GraphStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stats == nil {
		return nil, false
	}
	if hash == c.dataHash && c.now().Sub(c.computedAt) < c.ttl {
		return c.stats, true
	}
	return nil, false
}

// Set stores stats for ks.
func (c *Cache) Set(ks []model.Keyword, stats *GraphStats) {
	c.SetByHash(ComputeDataHash(ks), stats)
}

// SetByHash stores stats under a precomputed hash.
func (c *Cache) SetByHash(hash string, stats *GraphStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dataHash = hash
	c.stats = stats
	c.computedAt = c.now()
}

// Analyze returns the stats for ks, computing and caching them on a miss.
// hit reports whether the cached value was used.
func (c *Cache) Analyze(ks []model.Keyword, opts Options) (stats GraphStats, hit bool) {
	hash := ComputeDataHash(ks)
	if s, ok := c.GetByHash(hash); ok {
		return *s, true
	}
	s := NewAnalyzer(ks, opts).Analyze()
	c.SetByHash(hash, &s)
	return s, false
}

// Invalidate clears the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dataHash = ""
	c.stats = nil
	c.computedAt = time.Time{}
}

// Hash returns the current data hash, or empty string if no cached data.
func (c *Cache) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataHash
}

// ComputeDataHash hashes the fields that shape the keyword graph. Keywords
// are sorted by ID first so input order does not matter.
func ComputeDataHash(ks []model.Keyword) string {
	if len(ks) == 0 {
		return "empty"
	}

	sorted := make([]model.Keyword, len(ks))
	copy(sorted, ks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, k := range sorted {
		h.Write([]byte(strconv.Itoa(k.ID)))
		h.Write([]byte{0})
		h.Write([]byte(k.Name))
		h.Write([]byte{0})
		h.Write([]byte(k.Subcategory))
		h.Write([]byte{0})
		h.Write([]byte(k.Status))
		h.Write([]byte{0})

		deps := append([]int(nil), k.Dependencies...)
		sort.Ints(deps)
		for _, d := range deps {
			h.Write([]byte(strconv.Itoa(d)))
			h.Write([]byte{','})
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
