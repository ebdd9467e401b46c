// Package history keeps the bounded, most-recent-first list of past searches
// and persists it after every change. Persistence is best effort: a failed
// load starts empty and a failed save is logged, never returned.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/logging"
	"github.com/tjswar/medilookapp/metrics"
)

// DefaultCapacity is the number of entries kept when no capacity is configured.
const DefaultCapacity = 20

// Compile-time check to ensure Cache implements HistoryCache
var _ interfaces.HistoryCache = (*Cache)(nil)

// Cache is safe for concurrent use. Every mutation rewrites the whole blob.
type Cache struct {
	mu       sync.Mutex
	entries  []entities.SearchHistoryEntry
	capacity int
	store    interfaces.BlobStore
	now      func() time.Time
}

// NewCache builds a cache of at most capacity entries and loads whatever store
// holds. A capacity below 1 uses DefaultCapacity.
func NewCache(store interfaces.BlobStore, capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	c := &Cache{
		capacity: capacity,
		store:    store,
		now:      time.Now,
	}
	c.entries = c.load()
	metrics.SearchHistoryEntries.Set(float64(len(c.entries)))

	return c
}

// load decodes the persisted entries. Absent or corrupt data yields an empty
// list.
func (c *Cache) load() []entities.SearchHistoryEntry {
	if c.store == nil {
		return nil
	}

	data, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("Failed to load search history, starting empty", "error", err)
		}
		return nil
	}

	var entries []entities.SearchHistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn("Persisted search history is corrupt, starting empty", "error", err)
		return nil
	}

	// Re-apply the invariants in case the blob was edited by hand.
	cleaned := make([]entities.SearchHistoryEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		key := entities.FoldKey(e.Query)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, e)
		if len(cleaned) == c.capacity {
			break
		}
	}

	logging.Info("Search history loaded", "entries", len(cleaned))
	return cleaned
}

// Record stores query and a copy of results at the front, replacing any entry
// whose query is equal ignoring case, then trims to capacity.
func (c *Cache) Record(query string, results []entities.Medicine) {
	entry := entities.NewSearchHistoryEntry(query, results, c.now())
	key := entities.FoldKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]entities.SearchHistoryEntry, 0, len(c.entries)+1)
	entries = append(entries, entry)
	for _, e := range c.entries {
		if entities.FoldKey(e.Query) != key {
			entries = append(entries, e)
		}
	}
	if len(entries) > c.capacity {
		entries = entries[:c.capacity]
	}

	c.entries = entries
	c.persist()
}

// Clear drops every entry and removes the persisted blob.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	metrics.SearchHistoryEntries.Set(0)

	if c.store == nil {
		return
	}
	if err := c.store.Delete(); err != nil {
		logging.Warn("Failed to delete search history", "error", err)
	}
}

// Entries returns a deep copy, most recent first.
func (c *Cache) Entries() []entities.SearchHistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]entities.SearchHistoryEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// persist must be called with c.mu held.
func (c *Cache) persist() {
	metrics.SearchHistoryEntries.Set(float64(len(c.entries)))

	if c.store == nil {
		return
	}

	data, err := json.Marshal(c.entries)
	if err != nil {
		logging.Warn("Failed to encode search history", "error", err)
		return
	}
	if err := c.store.Save(data); err != nil {
		logging.Warn("Failed to save search history", "error", err)
	}
}
