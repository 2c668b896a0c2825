/*
Package history maintains the bounded "recently viewed" product cache.

The cache is an ordered, deduplicated, size-capped list of viewed products,
hydrated once from the kv store and re-persisted on every structural change.
The in-memory list is authoritative for the current session: a failed persist
is logged and otherwise ignored.
*/
package history

import (
	"sync"
	"time"

	"github.com/openshelf/engage/internal/catalog"
	"github.com/openshelf/engage/internal/kv"
)

// DefaultCapacity is the maximum number of retained viewed items.
const DefaultCapacity = 10

// Snapshot is the shallow copy of a product's display fields at view time.
// Later catalog edits do not retroactively change history entries.
type Snapshot struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageRef string  `json:"imageRef"`
}

// ViewedItem is a single recently-viewed entry.
type ViewedItem struct {
	// ID is the product's stable identifier, unique within the cache.
	ID string `json:"id"`

	// Snapshot holds the product's display fields as of the view event.
	Snapshot Snapshot `json:"snapshot"`

	// ViewedAt is when the product was first viewed.
	ViewedAt time.Time `json:"viewedAt"`
}

// Cache is the bounded recently-viewed list.
//
// Ordering is most-recent-first and insertion order is the ordering key:
// re-viewing an already-present product does not move it or refresh its
// timestamp (this mirrors the storefront's observed behavior; see DESIGN.md).
type Cache struct {
	mu       sync.Mutex
	store    kv.Store
	capacity int
	items    []ViewedItem

	hydrateOnce sync.Once

	// now is injectable for tests.
	now func() time.Time
}

// NewCache creates a cache persisting through store with the given capacity.
// A capacity <= 0 falls back to DefaultCapacity.
func NewCache(store kv.Store, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		store:    store,
		capacity: capacity,
		now:      time.Now,
	}
}

// Initialize hydrates the cache from the kv store.
//
// It is idempotent: only the first call reads storage, so a host that wires
// setup into its render loop cannot clobber in-memory state. Missing or
// malformed storage yields an empty cache.
func (c *Cache) Initialize() {
	c.hydrateOnce.Do(func() {
		var stored []ViewedItem
		if !c.store.Load(kv.RecentlyViewedKey, &stored) {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if len(stored) > c.capacity {
			stored = stored[:c.capacity]
		}
		c.items = stored
	})
}

// Record adds product to the front of the cache.
//
// A product with an empty ID is a silent no-op. A product whose ID is already
// present anywhere in the list is also a no-op: no reorder, no timestamp
// refresh. Otherwise the product's display fields are snapshotted, prepended,
// the tail is truncated to capacity, and the full list is persisted.
func (c *Cache) Record(product catalog.ProductSummary) {
	if product.ID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.items {
		if item.ID == product.ID {
			return
		}
	}

	entry := ViewedItem{
		ID: product.ID,
		Snapshot: Snapshot{
			Name:     product.Name,
			Price:    product.Price,
			ImageRef: product.ImageRef,
		},
		ViewedAt: c.now(),
	}

	c.items = append([]ViewedItem{entry}, c.items...)
	if len(c.items) > c.capacity {
		c.items = c.items[:c.capacity]
	}

	c.persistLocked()
}

// List returns up to max entries, most-recent-first. A max <= 0 returns all
// entries. The returned slice is a copy; callers cannot mutate the cache.
func (c *Cache) List(max int) []ViewedItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	if max > 0 && max < n {
		n = max
	}

	out := make([]ViewedItem, n)
	copy(out, c.items[:n])
	return out
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear empties the cache and persists the empty state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.persistLocked()
}

// persistLocked writes the full list back to the kv store.
// Persistence failures are non-fatal; the store logs them.
func (c *Cache) persistLocked() {
	items := c.items
	if items == nil {
		items = []ViewedItem{}
	}
	_ = c.store.Save(kv.RecentlyViewedKey, items)
}
