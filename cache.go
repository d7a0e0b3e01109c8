// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package resourcecache provides a bounded-memory cache of resource lookups
// with a negative (not found) tier and randomized space-based eviction.
package resourcecache

// Cacher acts as a best effort store of resolved resources.
type Cacher[V any] interface {
	// Lookup returns the entry cached under key, if any, counting the access.
	Lookup(key string) (Entry[V], bool)

	// Load inserts an entry. It reports false if key is already cached.
	Load(entry Entry[V]) bool

	// Contains reports whether key is cached in either tier without
	// counting an access.
	Contains(key string) bool

	// Unload removes the entry cached under key.
	Unload(key string) bool

	// Allocate tries to make room for size more units.
	Allocate(size int64) bool

	// Flush removes all entries from the cache.
	Flush()

	// Len returns the number of entries in the cache.
	Len() int

	// PortionFilled returns fraction of the size budget in use.
	PortionFilled() float64

	// Stats returns a snapshot of the cache counters.
	Stats() Stats
}

// Entry is a cached resource or a cached "does not exist" result.
type Entry[V any] struct {
	// Name is the resource path the entry is cached under.
	Name string
	// Exists is false for negative entries.
	Exists bool
	// Size is the cost charged against the budget. Negative entries always
	// cost 1.
	Size int64
	// AccessCount is the number of lookups that matched the entry since it
	// was loaded.
	AccessCount int64
	// Value is the cached payload.
	Value V
}

// Key implements index.Keyed.
func (e *Entry[V]) Key() string {
	return e.Name
}

func (e *Entry[V]) cost() int64 {
	if !e.Exists {
		return 1
	}
	return e.Size
}

// minEntrySize is the smallest cost charged for an existing resource.
const minEntrySize = 1
