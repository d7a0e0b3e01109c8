// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcecache

import (
	"log/slog"

	"github.com/luxfi/resourcecache/index"
)

var _ Cacher[struct{}] = (*ResourceCache[struct{}])(nil)

// ResourceCache caches resolved resources under a soft size budget.
//
// Existing resources live in a sorted index, missing ones in an unordered
// negative tier charged one unit each. Load never evicts; callers that want
// the budget honored call Allocate first.
//
// ResourceCache is not safe for concurrent use. Callers must serialize every
// call, including a Lookup followed by Allocate and Load.
type ResourceCache[V any] struct {
	cfg Config

	found    *index.Index[*Entry[V]]
	notFound *negativeCache[V]

	currentSize int64
	accessCount int64
	hitCount    int64

	evictions        int64
	allocateFailures int64
	notFoundDrains   int64

	random          Random
	log             *slog.Logger
	checkInvariants bool
}

// New creates a cache with the given configuration.
func New[V any](cfg Config, opts ...Option) (*ResourceCache[V], error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	return &ResourceCache[V]{
		cfg:             cfg,
		found:           index.New[*Entry[V]](0),
		notFound:        newNegativeCache[V](),
		random:          o.random,
		log:             o.logger,
		checkInvariants: o.checkInvariants,
	}, nil
}

// Lookup returns a copy of the entry cached under key. Every call counts as
// an access; a match also counts as a hit for the cache and the entry.
func (c *ResourceCache[V]) Lookup(key string) (Entry[V], bool) {
	c.accessCount++

	e, ok := c.found.Get(key)
	if !ok {
		e, ok = c.notFound.get(key)
	}
	if !ok {
		return Entry[V]{}, false
	}

	c.hitCount++
	e.AccessCount++
	return *e, true
}

// Load inserts entry into the tier matching entry.Exists. It reports false,
// charging nothing, if key is already cached in either tier. Existing
// entries smaller than one unit are charged one unit.
func (c *ResourceCache[V]) Load(entry Entry[V]) bool {
	if c.Contains(entry.Name) {
		return false
	}

	e := entry
	e.AccessCount = 0
	if e.Exists && e.Size < minEntrySize {
		e.Size = minEntrySize
	}

	if e.Exists {
		if !c.found.Insert(&e) {
			return false
		}
	} else if !c.notFound.put(e.Name, &e) {
		return false
	}

	c.currentSize += e.cost()
	c.verify("load")
	return true
}

// Unload removes the entry cached under key from whichever tier holds it.
func (c *ResourceCache[V]) Unload(key string) bool {
	if e, ok := c.found.Remove(key); ok {
		c.currentSize -= e.cost()
		c.verify("unload")
		return true
	}
	if e, ok := c.notFound.remove(key); ok {
		c.currentSize -= e.cost()
		c.verify("unload")
		return true
	}
	return false
}

// Flush drops both tiers. Access and hit counters are kept.
func (c *ResourceCache[V]) Flush() {
	c.found.Reset()
	c.notFound.clear()
	c.currentSize = 0
}

// Len returns the number of entries in both tiers.
func (c *ResourceCache[V]) Len() int {
	return c.found.Len() + c.notFound.len()
}

// PortionFilled returns CurrentSize / MaxSize. It exceeds 1 when loads
// have gone over budget.
func (c *ResourceCache[V]) PortionFilled() float64 {
	return float64(c.currentSize) / float64(c.cfg.MaxSize)
}

// AccessCount returns the number of lookups performed.
func (c *ResourceCache[V]) AccessCount() int64 { return c.accessCount }

// HitCount returns the number of lookups that matched an entry.
func (c *ResourceCache[V]) HitCount() int64 { return c.hitCount }

// CurrentSize returns the units charged by resident entries in both tiers.
func (c *ResourceCache[V]) CurrentSize() int64 { return c.currentSize }

// MaxSize returns the configured size budget.
func (c *ResourceCache[V]) MaxSize() int64 { return c.cfg.MaxSize }

// Config returns the effective configuration.
func (c *ResourceCache[V]) Config() Config {
	return c.cfg
}

// Stats returns a snapshot of the cache counters.
func (c *ResourceCache[V]) Stats() Stats {
	return Stats{
		Entries:          c.found.Len(),
		NotFoundEntries:  c.notFound.len(),
		CurrentSize:      c.currentSize,
		MaxSize:          c.cfg.MaxSize,
		AccessCount:      c.accessCount,
		HitCount:         c.hitCount,
		Evictions:        c.evictions,
		AllocateFailures: c.allocateFailures,
		NotFoundDrains:   c.notFoundDrains,
	}
}

// Contains reports whether key is cached in either tier. Unlike Lookup it
// does not count an access.
func (c *ResourceCache[V]) Contains(key string) bool {
	if _, ok := c.found.Get(key); ok {
		return true
	}
	_, ok := c.notFound.get(key)
	return ok
}
