// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcecache

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jmgilman/go/errors"
)

const (
	DefaultMaxAllocateIterations   = 20
	DefaultDesiredEntryAccessRatio = 3
	DefaultSpareNotFoundEntries    = 500
)

// Config holds the sizing and eviction parameters of a ResourceCache.
// Zero values other than MaxSize are replaced by their defaults.
type Config struct {
	MaxSize                 int64 `yaml:"max_size" mapstructure:"max_size"`
	MaxAllocateIterations   int   `yaml:"max_allocate_iterations" mapstructure:"max_allocate_iterations"`
	DesiredEntryAccessRatio int64 `yaml:"desired_entry_access_ratio" mapstructure:"desired_entry_access_ratio"`
	SpareNotFoundEntries    int   `yaml:"spare_not_found_entries" mapstructure:"spare_not_found_entries"`
}

// DefaultConfig returns a configuration for the given budget with default
// eviction parameters.
func DefaultConfig(maxSize int64) Config {
	return Config{
		MaxSize:                 maxSize,
		MaxAllocateIterations:   DefaultMaxAllocateIterations,
		DesiredEntryAccessRatio: DefaultDesiredEntryAccessRatio,
		SpareNotFoundEntries:    DefaultSpareNotFoundEntries,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAllocateIterations == 0 {
		c.MaxAllocateIterations = DefaultMaxAllocateIterations
	}
	if c.DesiredEntryAccessRatio == 0 {
		c.DesiredEntryAccessRatio = DefaultDesiredEntryAccessRatio
	}
	if c.SpareNotFoundEntries == 0 {
		c.SpareNotFoundEntries = DefaultSpareNotFoundEntries
	}
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.MaxSize <= 0:
		return errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "max_size must be greater than 0"),
			"max_size", c.MaxSize)
	case c.MaxAllocateIterations < 0:
		return errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "max_allocate_iterations must be non-negative"),
			"max_allocate_iterations", c.MaxAllocateIterations)
	case c.DesiredEntryAccessRatio < 0:
		return errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "desired_entry_access_ratio must be non-negative"),
			"desired_entry_access_ratio", c.DesiredEntryAccessRatio)
	case c.SpareNotFoundEntries < 0:
		return errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "spare_not_found_entries must be non-negative"),
			"spare_not_found_entries", c.SpareNotFoundEntries)
	}
	return nil
}

// Random is the source eviction sampling draws positions from.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// Option configures a ResourceCache.
type Option func(*options)

type options struct {
	random          Random
	logger          *slog.Logger
	checkInvariants bool
}

// WithRandom sets the sampling source.
func WithRandom(r Random) Option {
	return func(o *options) {
		o.random = r
	}
}

// WithSeed seeds the default sampling source.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.random = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithLogger sets the logger used for eviction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithInvariantChecks verifies size accounting and index ordering after
// every mutation and panics on a violation. Intended for tests.
func WithInvariantChecks() Option {
	return func(o *options) {
		o.checkInvariants = true
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.random == nil {
		seed := uint64(time.Now().UnixNano())
		o.random = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
