// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcecache

// Allocate tries to leave at least size units free under MaxSize.
//
// It first schedules the whole negative tier for removal when it holds more
// than SpareNotFoundEntries entries, then samples up to MaxAllocateIterations
// distinct random entries and marks those whose lifetime access ratio is below
// DesiredEntryAccessRatio. A sample that is hot still uses up its attempt.
// The target is padded by 5% of MaxSize.
//
// Nothing is removed unless the target is met: on false the cache is left
// exactly as it was.
func (c *ResourceCache[V]) Allocate(size int64) bool {
	toFree := size - (c.cfg.MaxSize - c.currentSize)
	if toFree <= 0 {
		return true
	}
	toFree += c.cfg.MaxSize / 20

	drain := 0
	if n := c.notFound.len(); n > c.cfg.SpareNotFoundEntries {
		drain = n
		toFree -= int64(n)
		if toFree <= 0 {
			c.drainNotFound()
			c.verify("allocate")
			return true
		}
	}

	victims, reclaimed, toFree := c.sampleVictims(toFree)
	if toFree > 0 {
		c.allocateFailures++
		c.log.Debug("allocate failed",
			"size", size,
			"short_by", toFree,
			"current_size", c.currentSize,
			"max_size", c.cfg.MaxSize,
			"entries", c.found.Len(),
		)
		return false
	}

	if drain > 0 {
		c.drainNotFound()
	}
	c.found.RemoveIndices(victims)
	c.currentSize -= reclaimed
	c.evictions += int64(len(victims))
	c.log.Debug("evicted entries",
		"count", len(victims),
		"reclaimed", reclaimed,
		"current_size", c.currentSize,
	)
	c.verify("allocate")
	return true
}

// sampleVictims picks cold entries until toFree is covered or the attempt
// budget runs out. It does not modify the index.
func (c *ResourceCache[V]) sampleVictims(toFree int64) ([]int, int64, int64) {
	n := c.found.Len()
	if n == 0 {
		return nil, 0, toFree
	}

	var (
		victims   []int
		reclaimed int64
		picked    = make(map[int]struct{}, min(n, c.cfg.MaxAllocateIterations))
	)
	for attempt := 0; attempt < c.cfg.MaxAllocateIterations && toFree > 0; attempt++ {
		if len(picked) == n {
			break
		}
		i := c.random.IntN(n)
		for {
			if _, dup := picked[i]; !dup {
				break
			}
			i = c.random.IntN(n)
		}
		picked[i] = struct{}{}

		e := c.found.At(i)
		if c.accessRatio(e) < c.cfg.DesiredEntryAccessRatio {
			victims = append(victims, i)
			reclaimed += e.Size
			toFree -= e.Size
		}
	}
	return victims, reclaimed, toFree
}

// accessRatio is the entry's share of all lookups in percent. Before any
// lookup every entry is considered cold.
func (c *ResourceCache[V]) accessRatio(e *Entry[V]) int64 {
	if c.accessCount == 0 {
		return 0
	}
	return e.AccessCount * 100 / c.accessCount
}

func (c *ResourceCache[V]) drainNotFound() {
	n := c.notFound.clear()
	c.currentSize -= int64(n)
	c.notFoundDrains++
	c.log.Debug("drained not-found entries", "count", n, "current_size", c.currentSize)
}
