// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/luxfi/resourcecache"
	"github.com/luxfi/resourcecache/config"
	"github.com/luxfi/resourcecache/loader"
	"github.com/luxfi/resourcecache/metercacher"
)

func init() {
	replayCmd := &cobra.Command{
		Use:   "replay [paths...]",
		Short: "Look up each path through the cache and report cache statistics",
		Long: `Replay resolves every path given as an argument or listed in the trace file
(one per line) against the configured root directory, going through the
resource cache, and prints the cache counters at the end.`,
		RunE: runReplay,
	}

	replayCmd.Flags().String("trace", "", "file with one path per line")
	replayCmd.Flags().Int("workers", 0, "concurrent lookups (overrides replay.workers)")

	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Replay.Workers = workers
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

	paths := args
	if trace, _ := cmd.Flags().GetString("trace"); trace != "" {
		f, err := os.Open(trace)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()

		fromTrace, err := readTrace(f)
		if err != nil {
			return fmt.Errorf("failed to read trace: %w", err)
		}
		paths = append(paths, fromTrace...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no paths to replay")
	}

	fsys := afero.NewBasePathFs(afero.NewReadOnlyFs(afero.NewOsFs()), cfg.Root)
	res, err := replay(cmd.Context(), fsys, cfg, logger, paths)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res)
}

type replayResult struct {
	Found    int64
	Missing  int64
	Failed   int64
	Stats    resourcecache.Stats
	Registry *prometheus.Registry
}

func replay(ctx context.Context, fsys afero.Fs, cfg *config.File, logger *slog.Logger, paths []string) (*replayResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []resourcecache.Option{resourcecache.WithLogger(logger)}
	if cfg.Replay.Seed != 0 {
		opts = append(opts, resourcecache.WithSeed(cfg.Replay.Seed))
	}
	inner, err := resourcecache.New[os.FileInfo](cfg.Cache, opts...)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metered, err := metercacher.New[os.FileInfo]("rescache", reg, inner)
	if err != nil {
		return nil, err
	}

	loaderOpts := []loader.Option{loader.WithLogger(logger)}
	if cfg.Replay.LoadOnAllocateFailure {
		loaderOpts = append(loaderOpts, loader.WithLoadOnAllocateFailure())
	}
	l := loader.New[os.FileInfo](metered, loader.NewFSResolver(fsys), loaderOpts...)

	var found, missing, failed atomic.Int64
	p := pool.New().WithContext(ctx).WithMaxGoroutines(cfg.Replay.Workers)
	for _, path := range paths {
		p.Go(func(ctx context.Context) error {
			e, err := l.Get(ctx, path)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Warn("lookup failed", "path", path, "error", err)
			case e.Exists:
				found.Add(1)
			default:
				missing.Add(1)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	stats := l.Stats()
	logger.Info("replay finished",
		"paths", len(paths),
		"hit_ratio", stats.HitRatio(),
		"evictions", stats.Evictions,
	)
	return &replayResult{
		Found:    found.Load(),
		Missing:  missing.Load(),
		Failed:   failed.Load(),
		Stats:    stats,
		Registry: reg,
	}, nil
}

func readTrace(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, sc.Err()
}

func printResult(w io.Writer, res *replayResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	s := res.Stats
	fmt.Fprintf(tw, "found\t%d\n", res.Found)
	fmt.Fprintf(tw, "missing\t%d\n", res.Missing)
	fmt.Fprintf(tw, "failed\t%d\n", res.Failed)
	fmt.Fprintf(tw, "lookups\t%d\n", s.AccessCount)
	fmt.Fprintf(tw, "hits\t%d\n", s.HitCount)
	fmt.Fprintf(tw, "hit ratio\t%.3f\n", s.HitRatio())
	fmt.Fprintf(tw, "entries\t%d\n", s.Entries)
	fmt.Fprintf(tw, "not found entries\t%d\n", s.NotFoundEntries)
	fmt.Fprintf(tw, "size\t%d / %d\n", s.CurrentSize, s.MaxSize)
	fmt.Fprintf(tw, "evictions\t%d\n", s.Evictions)
	fmt.Fprintf(tw, "allocate failures\t%d\n", s.AllocateFailures)
	fmt.Fprintf(tw, "not found drains\t%d\n", s.NotFoundDrains)
	return tw.Flush()
}
