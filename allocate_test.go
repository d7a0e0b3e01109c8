package resourcecache

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// seqRandom replays a fixed sequence of positions.
type seqRandom struct {
	seq []int
	i   int
}

func (r *seqRandom) IntN(n int) int {
	v := r.seq[r.i%len(r.seq)] % n
	r.i++
	return v
}

func TestAllocateWithinBudget(t *testing.T) {
	require := require.New(t)

	c := newTestCache(t, DefaultConfig(100))
	require.True(c.Load(found("/a", 40)))

	require.True(c.Allocate(60))
	require.Equal(int64(40), c.CurrentSize())
	require.Equal(int64(0), c.Stats().Evictions)
}

func TestAllocateEvictsColdEntries(t *testing.T) {
	require := require.New(t)

	c := newTestCache(t, DefaultConfig(10))
	keys := []string{"/r0", "/r1", "/r2"}
	for _, k := range keys {
		require.True(c.Load(found(k, 4)))
	}
	require.Equal(int64(12), c.CurrentSize())

	// Needs 5 - (10 - 12) = 7 units, so two of the three entries go.
	require.True(c.Allocate(5))
	require.Equal(int64(4), c.CurrentSize())
	require.Equal(int64(2), c.Stats().Evictions)

	present := 0
	for _, k := range keys {
		if _, ok := c.Lookup(k); ok {
			present++
		}
	}
	require.Equal(1, present)
}

func TestAllocatePadsTarget(t *testing.T) {
	require := require.New(t)

	// 200 free units are short of 210 by 10, padding adds 1000/20 = 50.
	c := newTestCache(t, DefaultConfig(1000))
	for i := 0; i < 8; i++ {
		require.True(c.Load(found(fmt.Sprintf("/r%d", i), 100)))
	}

	require.True(c.Allocate(210))
	require.Equal(int64(700), c.CurrentSize())
	require.Equal(int64(1), c.Stats().Evictions)
}

func TestAllocateKeepsHotEntries(t *testing.T) {
	require := require.New(t)

	c := newTestCache(t, DefaultConfig(10))
	for i := 0; i < 3; i++ {
		require.True(c.Load(found(fmt.Sprintf("/r%d", i), 4)))
	}
	for i := 0; i < 10; i++ {
		for j := 0; j < 3; j++ {
			_, ok := c.Lookup(fmt.Sprintf("/r%d", j))
			require.True(ok)
		}
	}

	require.False(c.Allocate(5))
	require.Equal(int64(12), c.CurrentSize())
	require.Equal(3, c.Len())
	require.Equal(int64(1), c.Stats().AllocateFailures)
}

func TestAllocateIsAtomic(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig(100)
	cfg.SpareNotFoundEntries = 2
	c := newTestCache(t, cfg)

	// Two cold entries worth 20 units, one hot entry worth 80.
	require.True(c.Load(found("/cold1", 10)))
	require.True(c.Load(found("/cold2", 10)))
	require.True(c.Load(found("/hot", 80)))
	for i := 0; i < 3; i++ {
		require.True(c.Load(missing(fmt.Sprintf("/missing%d", i))))
	}
	for i := 0; i < 20; i++ {
		c.Lookup("/hot")
	}
	before := c.Stats()

	// Needs 50 - (100 - 103) + 5 = 58 units. Draining gives 3 and the cold
	// entries 20, which is not enough.
	require.False(c.Allocate(50))

	after := c.Stats()
	require.Equal(before.CurrentSize, after.CurrentSize)
	require.Equal(before.Entries, after.Entries)
	require.Equal(before.NotFoundEntries, after.NotFoundEntries)
	for _, k := range []string{"/cold1", "/cold2", "/hot", "/missing0"} {
		_, ok := c.Lookup(k)
		require.True(ok, k)
	}
}

func TestAllocateWastedAttempts(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig(10)
	cfg.MaxAllocateIterations = 1
	// Position 0 is sampled first; it is hot, so the only attempt is used up
	// even though position 1 is cold.
	c := newTestCache(t, cfg, WithRandom(&seqRandom{seq: []int{0, 1}}))

	require.True(c.Load(found("/a", 6)))
	require.True(c.Load(found("/b", 6)))
	for i := 0; i < 5; i++ {
		c.Lookup("/a")
	}

	require.False(c.Allocate(1))
	require.Equal(int64(12), c.CurrentSize())

	// With a second attempt the cold entry is found.
	cfg.MaxAllocateIterations = 2
	c2 := newTestCache(t, cfg, WithRandom(&seqRandom{seq: []int{0, 1}}))
	require.True(c2.Load(found("/a", 6)))
	require.True(c2.Load(found("/b", 6)))
	for i := 0; i < 5; i++ {
		c2.Lookup("/a")
	}

	require.True(c2.Allocate(1))
	require.Equal(int64(6), c2.CurrentSize())
	_, ok := c2.Lookup("/a")
	require.True(ok)
	_, ok = c2.Lookup("/b")
	require.False(ok)
}

func TestAllocateRetriesCollisions(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig(10)
	cfg.MaxAllocateIterations = 2
	r := &seqRandom{seq: []int{0, 0, 0, 1}}
	c := newTestCache(t, cfg, WithRandom(r))

	require.True(c.Load(found("/a", 6)))
	require.True(c.Load(found("/b", 6)))

	// 1 - (10 - 12) = 3 units, no padding; /a alone covers it.
	require.True(c.Allocate(1))
	require.Equal(int64(6), c.CurrentSize())
	require.Equal(1, r.i)

	// Fill again and force both samples: the repeated 0s are skipped.
	require.True(c.Load(found("/c", 6)))
	r.i = 0
	require.True(c.Allocate(9))
	require.Equal(int64(0), c.CurrentSize())
	require.Equal(4, r.i)
}

func TestAllocateStopsWhenEveryEntrySampled(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig(10)
	cfg.MaxAllocateIterations = 100
	c := newTestCache(t, cfg)

	require.True(c.Load(found("/a", 6)))
	require.True(c.Load(found("/b", 6)))

	require.False(c.Allocate(20))
	require.Equal(int64(12), c.CurrentSize())
}

func TestAllocateEmptyCache(t *testing.T) {
	require := require.New(t)

	c := newTestCache(t, DefaultConfig(10))
	require.True(c.Allocate(10))
	require.False(c.Allocate(11))
}

func TestAllocateDrainsNotFound(t *testing.T) {
	require := require.New(t)

	c := newTestCache(t, DefaultConfig(100))
	for i := 0; i < 600; i++ {
		require.True(c.Load(missing(fmt.Sprintf("/missing/%d", i))))
	}
	require.Equal(int64(600), c.CurrentSize())

	require.True(c.Allocate(1))
	require.Equal(int64(0), c.CurrentSize())
	require.Equal(0, c.Len())
	require.Equal(int64(1), c.Stats().NotFoundDrains)

	_, ok := c.Lookup("/missing/0")
	require.False(ok)
}

func TestAllocateKeepsSpareNotFound(t *testing.T) {
	require := require.New(t)

	c := newTestCache(t, DefaultConfig(100))
	for i := 0; i < 400; i++ {
		require.True(c.Load(missing(fmt.Sprintf("/missing/%d", i))))
	}

	// The tier is under its spare threshold and there is nothing to sample.
	require.False(c.Allocate(1))
	require.Equal(int64(400), c.CurrentSize())
	require.Equal(400, c.Len())
}

func TestAllocateDrainThenSample(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig(100)
	cfg.SpareNotFoundEntries = 5
	c := newTestCache(t, cfg)

	for i := 0; i < 10; i++ {
		require.True(c.Load(missing(fmt.Sprintf("/missing/%d", i))))
	}
	require.True(c.Load(found("/big", 95)))
	require.Equal(int64(105), c.CurrentSize())

	// 20 - (100 - 105) + 5 = 30, drain gives 10, /big covers the rest.
	require.True(c.Allocate(20))
	require.Equal(int64(0), c.CurrentSize())
	require.Equal(0, c.Len())
}

func TestSpaceConservation(t *testing.T) {
	require := require.New(t)

	rng := rand.New(rand.NewPCG(7, 11))
	cfg := DefaultConfig(500)
	cfg.SpareNotFoundEntries = 20
	c := newTestCache(t, cfg, WithSeed(3))

	resident := make(map[string]int64)
	for i := 0; i < 5000; i++ {
		key := fmt.Sprintf("/p/%03d", rng.IntN(200))
		switch op := rng.IntN(10); {
		case op < 4:
			if _, ok := c.Lookup(key); ok {
				_, tracked := resident[key]
				require.True(tracked)
			}
		case op < 6:
			size := int64(1 + rng.IntN(40))
			if c.Load(found(key, size)) {
				resident[key] = size
			}
		case op < 7:
			if c.Load(missing(key)) {
				resident[key] = 1
			}
		case op < 8:
			_, tracked := resident[key]
			require.Equal(tracked, c.Unload(key))
			delete(resident, key)
		default:
			before := c.Stats()
			if !c.Allocate(int64(1 + rng.IntN(100))) {
				require.Equal(before.CurrentSize, c.CurrentSize())
				require.Equal(before.Entries, c.Stats().Entries)
				require.Equal(before.NotFoundEntries, c.Stats().NotFoundEntries)
				continue
			}
			// Drop whatever was evicted from the model.
			for k := range resident {
				if !c.Contains(k) {
					delete(resident, k)
				}
			}
		}

		var sum int64
		for _, s := range resident {
			sum += s
		}
		require.Equal(sum, c.CurrentSize())
		require.Equal(len(resident), c.Len())
		require.True(c.found.Sorted())
	}
}
