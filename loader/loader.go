// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package loader reads resources through a ResourceCache, resolving misses
// against a backing store.
package loader

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmgilman/go/errors"
	"golang.org/x/sync/singleflight"

	"github.com/luxfi/resourcecache"
)

// Loader serializes access to a cache and fills it from a Resolver on miss.
// It is safe for concurrent use. The wrapped cache must not be used directly
// while the Loader is in use.
type Loader[V any] struct {
	mu    sync.Mutex
	cache resourcecache.Cacher[V]

	resolver Resolver[V]
	group    singleflight.Group

	loadOnAllocateFailure bool
	log                   *slog.Logger
}

// Option configures a Loader.
type Option func(*loaderOptions)

type loaderOptions struct {
	loadOnAllocateFailure bool
	logger                *slog.Logger
}

// WithLoadOnAllocateFailure loads resolved entries even when Allocate could
// not make room, letting the cache exceed its budget.
func WithLoadOnAllocateFailure() Option {
	return func(o *loaderOptions) {
		o.loadOnAllocateFailure = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *loaderOptions) {
		o.logger = l
	}
}

// New returns a Loader over cache and resolver.
func New[V any](cache resourcecache.Cacher[V], resolver Resolver[V], opts ...Option) *Loader[V] {
	o := loaderOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[V]{
		cache:                 cache,
		resolver:              resolver,
		loadOnAllocateFailure: o.loadOnAllocateFailure,
		log:                   o.logger,
	}
}

// Get returns the entry for key, from the cache if present, otherwise from
// the resolver. Negative results are returned, and cached, with Exists set
// to false. A miss is resolved once for all concurrent callers of the same
// key, detached from ctx cancellation.
func (l *Loader[V]) Get(ctx context.Context, key string) (resourcecache.Entry[V], error) {
	l.mu.Lock()
	entry, ok := l.cache.Lookup(key)
	l.mu.Unlock()
	if ok {
		return entry, nil
	}

	// The resolve is shared by every caller waiting on key, so one caller
	// canceling must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := l.group.Do(key, func() (any, error) {
		resolved, err := l.resolver.Resolve(shared, key)
		if err != nil {
			return nil, err
		}
		resolved.Name = key
		l.store(resolved)
		return resolved, nil
	})
	if err != nil {
		return resourcecache.Entry[V]{}, errors.WithContext(
			errors.Wrap(err, errors.CodeUnavailable, "resolve resource"),
			"key", key)
	}
	return v.(resourcecache.Entry[V]), nil
}

func (l *Loader[V]) store(entry resourcecache.Entry[V]) {
	cost := int64(1)
	if entry.Exists {
		cost = max(entry.Size, 1)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// An earlier, non-overlapping resolve of the same key may have stored it
	// already; allocating for it would evict live entries for nothing.
	if l.cache.Contains(entry.Name) {
		return
	}
	if !l.cache.Allocate(cost) {
		if !l.loadOnAllocateFailure {
			l.log.Debug("serving resource uncached", "key", entry.Name, "size", cost)
			return
		}
		l.log.Debug("loading resource over budget", "key", entry.Name, "size", cost)
	}
	l.cache.Load(entry)
}

// Invalidate drops key from the cache.
func (l *Loader[V]) Invalidate(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.Unload(key)
}

// Stats returns the cache counters.
func (l *Loader[V]) Stats() resourcecache.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.Stats()
}
