package views

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/castellan/foliodash/internal/domain"
)

// Cache memoizes the filtered+sorted position view. The key combines
// the store's mutation version with a hash of the filter spec, so any
// change to either invalidates the entry. Caching is an optimization
// only: Filter/Sort stay the source of truth and the cache never
// serves a stale version.
type Cache struct {
	mu    sync.Mutex
	key   cacheKey
	value []domain.Position
	valid bool
}

type cacheKey struct {
	version uint64
	spec    uint64
}

// NewCache creates an empty view cache.
func NewCache() *Cache {
	return &Cache{}
}

// FilteredSorted returns the memoized view for (positions@version,
// spec), computing and storing it on miss.
func (c *Cache) FilteredSorted(positions []domain.Position, version uint64, spec FilterSpec) []domain.Position {
	key := cacheKey{version: version, spec: hashSpec(spec)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.key == key {
		return c.value
	}

	view := FilterAndSort(positions, spec)
	c.key = key
	c.value = view
	c.valid = true
	return view
}

// hashSpec collapses the filter spec into a 64-bit key via FNV-1a.
func hashSpec(spec FilterSpec) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d",
		spec.Search, spec.AssetClass, spec.PortfolioID, spec.SortColumn, spec.SortDirection)
	return h.Sum64()
}
