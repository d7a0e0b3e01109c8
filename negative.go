// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcecache

// negativeCache holds "does not exist" results keyed by resource path.
type negativeCache[V any] struct {
	items map[string]*Entry[V]
}

func newNegativeCache[V any]() *negativeCache[V] {
	return &negativeCache[V]{items: make(map[string]*Entry[V])}
}

// put stores e under key unless key is already present.
func (n *negativeCache[V]) put(key string, e *Entry[V]) bool {
	if _, ok := n.items[key]; ok {
		return false
	}
	n.items[key] = e
	return true
}

func (n *negativeCache[V]) get(key string) (*Entry[V], bool) {
	e, ok := n.items[key]
	return e, ok
}

func (n *negativeCache[V]) remove(key string) (*Entry[V], bool) {
	e, ok := n.items[key]
	if ok {
		delete(n.items, key)
	}
	return e, ok
}

// clear drops every entry and returns how many were dropped.
func (n *negativeCache[V]) clear() int {
	count := len(n.items)
	clear(n.items)
	return count
}

func (n *negativeCache[V]) len() int {
	return len(n.items)
}
