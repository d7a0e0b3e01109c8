// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cmd implements the rescache command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "rescache",
	Short: "Replay resource lookups through a size-bounded resource cache",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (defaults only when empty)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
