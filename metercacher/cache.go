// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metercacher provides a metered resource cache wrapper.
package metercacher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/resourcecache"
)

var _ resourcecache.Cacher[struct{}] = (*Cache[struct{}])(nil)

// Cache wraps a Cacher with metrics. Like the wrapped cache it is not safe
// for concurrent use.
type Cache[V any] struct {
	resourcecache.Cacher[V]
	metrics *cacheMetrics
}

// New creates a new metered cache wrapper and registers its metrics.
func New[V any](
	namespace string,
	registerer prometheus.Registerer,
	c resourcecache.Cacher[V],
) (*Cache[V], error) {
	metrics, err := newMetrics(namespace, registerer)
	if err != nil {
		return nil, err
	}
	mc := &Cache[V]{
		Cacher:  c,
		metrics: metrics,
	}
	mc.observeSize()
	return mc, nil
}

func (c *Cache[V]) Lookup(key string) (resourcecache.Entry[V], bool) {
	start := time.Now()
	entry, has := c.Cacher.Lookup(key)
	lookupDuration := time.Since(start)

	if has {
		c.metrics.lookups.With(hitLabels).Inc()
		c.metrics.lookupTime.With(hitLabels).Add(float64(lookupDuration))
	} else {
		c.metrics.lookups.With(missLabels).Inc()
		c.metrics.lookupTime.With(missLabels).Add(float64(lookupDuration))
	}

	return entry, has
}

func (c *Cache[V]) Load(entry resourcecache.Entry[V]) bool {
	loaded := c.Cacher.Load(entry)
	if loaded {
		c.metrics.loads.With(loadedLabels).Inc()
	} else {
		c.metrics.loads.With(duplicateLabels).Inc()
	}
	c.observeSize()
	return loaded
}

func (c *Cache[_]) Unload(key string) bool {
	removed := c.Cacher.Unload(key)
	if removed {
		c.metrics.unloads.Inc()
		c.observeSize()
	}
	return removed
}

func (c *Cache[_]) Allocate(size int64) bool {
	ok := c.Cacher.Allocate(size)
	if ok {
		c.metrics.allocations.With(okLabels).Inc()
	} else {
		c.metrics.allocations.With(failedLabels).Inc()
	}
	c.observeSize()
	return ok
}

func (c *Cache[_]) Flush() {
	c.Cacher.Flush()
	c.observeSize()
}

func (c *Cache[_]) observeSize() {
	stats := c.Cacher.Stats()
	c.metrics.entries.With(foundLabels).Set(float64(stats.Entries))
	c.metrics.entries.With(notFoundLabels).Set(float64(stats.NotFoundEntries))
	c.metrics.size.Set(float64(stats.CurrentSize))
	c.metrics.portionFilled.Set(c.Cacher.PortionFilled())
}
