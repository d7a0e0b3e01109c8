// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package index provides an ordered, slice-backed map from string keys to
// values with floor-style binary search.
package index

import (
	"iter"
	"slices"
)

// Keyed is implemented by values stored in an Index.
type Keyed interface {
	Key() string
}

// Index keeps values sorted by ascending byte-wise key with no duplicates.
// It is not safe for concurrent use.
type Index[V Keyed] struct {
	entries []V
}

// New returns an empty index with room for capacity values.
func New[V Keyed](capacity int) *Index[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Index[V]{entries: make([]V, 0, capacity)}
}

// Len returns the number of values in the index.
func (x *Index[V]) Len() int {
	return len(x.entries)
}

// At returns the value at position i in key order.
func (x *Index[V]) At(i int) V {
	return x.entries[i]
}

// Find returns the position of the last value whose key is <= key, or -1 if
// the index is empty or key sorts before every value.
//
// An exact match is detected by the caller comparing At(i).Key() with key.
func (x *Index[V]) Find(key string) int {
	n := len(x.entries)
	if n == 0 {
		return -1
	}

	a, b := 0, n-1
	if key < x.entries[a].Key() {
		return -1
	}
	if a == b {
		return a
	}

	for b-a > 1 {
		m := a + (b-a)/2
		if x.entries[m].Key() <= key {
			a = m
		} else {
			b = m
		}
	}

	// [a, b] are adjacent; b wins only if it is still <= key.
	if x.entries[b].Key() <= key {
		return b
	}
	return a
}

// Get returns the value stored under key.
func (x *Index[V]) Get(key string) (V, bool) {
	if i := x.Find(key); i >= 0 && x.entries[i].Key() == key {
		return x.entries[i], true
	}
	var zero V
	return zero, false
}

// Insert adds v after its floor position. It reports false, leaving the
// index untouched, if a value with the same key is already present.
func (x *Index[V]) Insert(v V) bool {
	key := v.Key()
	i := x.Find(key)
	switch {
	case i < 0:
		// Before the first element (or into an empty index).
		x.entries = slices.Insert(x.entries, 0, v)
	case x.entries[i].Key() == key:
		return false
	case i == len(x.entries)-1:
		x.entries = append(x.entries, v)
	default:
		x.entries = slices.Insert(x.entries, i+1, v)
	}
	return true
}

// Remove deletes the value stored under key and returns it.
func (x *Index[V]) Remove(key string) (V, bool) {
	var zero V
	i := x.Find(key)
	if i < 0 || x.entries[i].Key() != key {
		return zero, false
	}
	v := x.entries[i]
	x.entries = slices.Delete(x.entries, i, i+1)
	return v, true
}

// RemoveIndices removes the values at the given distinct positions in a
// single compaction pass and returns them in key order. Out of range
// positions are ignored. idx is sorted in place.
func (x *Index[V]) RemoveIndices(idx []int) []V {
	if len(idx) == 0 {
		return nil
	}
	slices.Sort(idx)

	removed := make([]V, 0, len(idx))
	kept := x.entries[:0]
	next := 0
	for i, v := range x.entries {
		for next < len(idx) && idx[next] < i {
			next++
		}
		if next < len(idx) && idx[next] == i {
			removed = append(removed, v)
			next++
			continue
		}
		kept = append(kept, v)
	}

	var zero V
	for i := len(kept); i < len(x.entries); i++ {
		x.entries[i] = zero
	}
	x.entries = kept
	return removed
}

// All yields every position and value in key order.
func (x *Index[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i, v := range x.entries {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Sorted reports whether keys are strictly ascending.
func (x *Index[V]) Sorted() bool {
	for i := 1; i < len(x.entries); i++ {
		if x.entries[i-1].Key() >= x.entries[i].Key() {
			return false
		}
	}
	return true
}

// Reset drops every value.
func (x *Index[V]) Reset() {
	clear(x.entries)
	x.entries = x.entries[:0]
}
