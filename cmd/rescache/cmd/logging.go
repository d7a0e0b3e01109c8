// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/luxfi/resourcecache/config"
)

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger logs to console, and also to a rotated file when one is set.
func newLogger(console io.Writer, logConfig config.LogConfig) *slog.Logger {
	writer := console
	if logConfig.File != "" {
		writer = io.MultiWriter(console, &lumberjack.Logger{
			Filename:   logConfig.File,
			MaxSize:    logConfig.MaxSize,    // MB
			MaxBackups: logConfig.MaxBackups, // number of old files
			MaxAge:     logConfig.MaxAge,     // days
			Compress:   logConfig.Compress,
		})
	}

	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: parseLevel(logConfig.Level),
	}))
}
