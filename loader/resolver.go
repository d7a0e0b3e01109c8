// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package loader

import (
	"context"
	"io/fs"
	"os"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/afero"

	"github.com/luxfi/resourcecache"
)

// Resolver looks a key up in the backing store. A missing resource is
// reported as an entry with Exists set to false, not as an error.
type Resolver[V any] interface {
	Resolve(ctx context.Context, key string) (resourcecache.Entry[V], error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc[V any] func(ctx context.Context, key string) (resourcecache.Entry[V], error)

func (f ResolverFunc[V]) Resolve(ctx context.Context, key string) (resourcecache.Entry[V], error) {
	return f(ctx, key)
}

var _ Resolver[os.FileInfo] = (*FSResolver)(nil)

// FSResolver resolves paths against a filesystem, caching their FileInfo.
// Files cost their size in bytes, directories cost 1.
type FSResolver struct {
	fs afero.Fs
}

// NewFSResolver returns a resolver over fsys.
func NewFSResolver(fsys afero.Fs) *FSResolver {
	return &FSResolver{fs: fsys}
}

func (r *FSResolver) Resolve(ctx context.Context, key string) (resourcecache.Entry[os.FileInfo], error) {
	if err := ctx.Err(); err != nil {
		return resourcecache.Entry[os.FileInfo]{}, err
	}

	info, err := r.fs.Stat(key)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return resourcecache.Entry[os.FileInfo]{Name: key}, nil
	case err != nil:
		return resourcecache.Entry[os.FileInfo]{}, errors.WithContext(
			errors.Wrap(err, errors.CodeUnavailable, "stat resource"),
			"path", key)
	}

	size := info.Size()
	if info.IsDir() || size < 1 {
		size = 1
	}
	return resourcecache.Entry[os.FileInfo]{
		Name:   key,
		Exists: true,
		Size:   size,
		Value:  info,
	}, nil
}
