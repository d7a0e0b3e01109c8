// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcecache

import "fmt"

// verify panics if the size accounting or index ordering is broken. It is a
// no-op unless WithInvariantChecks was given.
func (c *ResourceCache[V]) verify(op string) {
	if !c.checkInvariants {
		return
	}
	if c.currentSize < 0 {
		panic(fmt.Sprintf("resourcecache: %s: negative size %d", op, c.currentSize))
	}
	if !c.found.Sorted() {
		panic(fmt.Sprintf("resourcecache: %s: index out of order", op))
	}
	if actual := c.residentSize(); actual != c.currentSize {
		panic(fmt.Sprintf("resourcecache: %s: size %d, resident entries sum to %d", op, c.currentSize, actual))
	}
}

func (c *ResourceCache[V]) residentSize() int64 {
	var total int64
	for _, e := range c.found.All() {
		total += e.cost()
	}
	return total + int64(c.notFound.len())
}
