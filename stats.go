// Copyright (C) 2026, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package resourcecache

// Stats contains cache counters at a point in time.
type Stats struct {
	Entries          int
	NotFoundEntries  int
	CurrentSize      int64
	MaxSize          int64
	AccessCount      int64
	HitCount         int64
	Evictions        int64
	AllocateFailures int64
	NotFoundDrains   int64
}

// HitRatio returns HitCount / AccessCount, or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	if s.AccessCount == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(s.AccessCount)
}
