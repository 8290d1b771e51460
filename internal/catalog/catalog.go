package catalog

import (
	"context"
	"slices"
	"strings"

	"hotcache/cache"
	"hotcache/internal/storage"
)

// Catalog is an immutable, indexed view over one load of entries. It is the
// value a cache publishes, so nothing may modify it after Build.
type Catalog struct {
	entries []Entry // sorted by key
	byKey   map[string]int
}

// Loader is anything that can fetch the full entry list.
type Loader interface {
	LoadEntries(ctx context.Context) ([]storage.EntryRow, error)
}

// Producer adapts l into a cache producer.
func Producer(l Loader) cache.Producer[*Catalog] {
	return func(ctx context.Context) (*Catalog, error) {
		rows, err := l.LoadEntries(ctx)
		if err != nil {
			return nil, err
		}
		return Build(rows), nil
	}
}

// NormalizeKey canonicalizes a key the way Build does.
func NormalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// Build normalizes rows and indexes them by key. Rows with an empty key are
// dropped; for duplicate keys the most recently updated row wins.
func Build(rows []storage.EntryRow) *Catalog {
	latest := make(map[string]Entry, len(rows))
	for _, r := range rows {
		k := NormalizeKey(r.Key)
		if k == "" {
			continue
		}
		if prev, ok := latest[k]; ok && prev.UpdatedAt.After(r.UpdatedAt) {
			continue
		}
		latest[k] = Entry{Key: k, Value: r.Value, UpdatedAt: r.UpdatedAt}
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(latest)),
		byKey:   make(map[string]int, len(latest)),
	}
	for _, e := range latest {
		c.entries = append(c.entries, e)
	}
	// deterministic order
	slices.SortFunc(c.entries, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	for i, e := range c.entries {
		c.byKey[e.Key] = i
	}
	return c
}

func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of all entries, sorted by key.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Get looks up a key after normalizing it.
func (c *Catalog) Get(key string) (Entry, bool) {
	i, ok := c.byKey[NormalizeKey(key)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}
