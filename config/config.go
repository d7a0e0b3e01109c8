// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the rescache tool configuration.
package config

import (
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/viper"

	"github.com/luxfi/resourcecache"
)

const envPrefix = "RESCACHE"

// File is the complete tool configuration.
type File struct {
	Cache  resourcecache.Config `yaml:"cache" mapstructure:"cache"`
	Root   string               `yaml:"root" mapstructure:"root"`
	Log    LogConfig            `yaml:"log" mapstructure:"log"`
	Replay ReplayConfig         `yaml:"replay" mapstructure:"replay"`
}

// LogConfig represents logging configuration with rotation support
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`               // Log file path (empty = console only)
	Level      string `yaml:"level" mapstructure:"level"`             // Log level (debug, info, warn, error)
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // Max size in MB before rotation
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // Max age in days to keep files
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // Max number of old files to keep
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// ReplayConfig controls trace replay.
type ReplayConfig struct {
	Workers               int    `yaml:"workers" mapstructure:"workers"`
	Seed                  uint64 `yaml:"seed" mapstructure:"seed"`
	LoadOnAllocateFailure bool   `yaml:"load_on_allocate_failure" mapstructure:"load_on_allocate_failure"`
}

// Default returns a config with default values
func Default() *File {
	return &File{
		Cache: resourcecache.DefaultConfig(64 << 20),
		Root:  ".",
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxAge:     28,
			MaxBackups: 3,
		},
		Replay: ReplayConfig{
			Workers: 4,
		},
	}
}

// Load reads path, if not empty, over the defaults. RESCACHE_* environment
// variables override file values, e.g. RESCACHE_CACHE_MAX_SIZE.
func Load(path string) (*File, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithContext(
				errors.Wrap(err, errors.CodeNotFound, "reading config file"),
				"path", path)
		}
	}

	cfg := &File{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *File) {
	v.SetDefault("cache.max_size", d.Cache.MaxSize)
	v.SetDefault("cache.max_allocate_iterations", d.Cache.MaxAllocateIterations)
	v.SetDefault("cache.desired_entry_access_ratio", d.Cache.DesiredEntryAccessRatio)
	v.SetDefault("cache.spare_not_found_entries", d.Cache.SpareNotFoundEntries)
	v.SetDefault("root", d.Root)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("replay.workers", d.Replay.Workers)
	v.SetDefault("replay.seed", d.Replay.Seed)
	v.SetDefault("replay.load_on_allocate_failure", d.Replay.LoadOnAllocateFailure)
}

// Validate validates the configuration
func (f *File) Validate() error {
	if err := f.Cache.Validate(); err != nil {
		return err
	}
	if f.Root == "" {
		return errors.New(errors.CodeInvalidConfig, "root cannot be empty")
	}
	if f.Replay.Workers <= 0 {
		return errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "replay workers must be greater than 0"),
			"workers", f.Replay.Workers)
	}
	switch strings.ToLower(f.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.WithContext(
			errors.New(errors.CodeInvalidConfig, "unknown log level"),
			"level", f.Log.Level)
	}
	return nil
}
