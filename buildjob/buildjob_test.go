package buildjob

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/buildlog"
)

func coords(n int) []TileCoord {
	out := make([]TileCoord, n)
	for i := range out {
		out[i] = TileCoord{X: i, Y: i}
	}
	return out
}

func TestRunBuildsEveryTileExactlyOnce(t *testing.T) {
	var built int32
	j := New(4, func(c TileCoord) error {
		atomic.AddInt32(&built, 1)
		return nil
	}, nil)

	results := j.Run(coords(37))
	assert.Equal(t, int32(37), built)
	assert.Len(t, results, 37)

	sort.Slice(results, func(i, k int) bool { return results[i].Coord.X < results[k].Coord.X })
	for i, r := range results {
		assert.Equal(t, TileCoord{X: i, Y: i}, r.Coord)
		assert.NoError(t, r.Err)
	}
}

func TestRunIsolatesPerTileFailures(t *testing.T) {
	j := New(3, func(c TileCoord) error {
		if c.X == 2 {
			return fmt.Errorf("corrupt adt")
		}
		return nil
	}, buildlog.New(true))

	results := j.Run(coords(5))
	assert.Len(t, results, 5)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			assert.Equal(t, 2, r.Coord.X)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunWithEmptyTileSet(t *testing.T) {
	j := New(4, func(c TileCoord) error { return nil }, nil)
	results := j.Run(nil)
	assert.Empty(t, results)
}

func TestNewClampsJobsToAtLeastOne(t *testing.T) {
	j := New(0, func(c TileCoord) error { return nil }, nil)
	assert.Equal(t, 1, j.Jobs)

	j2 := New(-3, func(c TileCoord) error { return nil }, nil)
	assert.Equal(t, 1, j2.Jobs)
}

func TestIsRunningFalseAfterRunCompletes(t *testing.T) {
	j := New(2, func(c TileCoord) error { return nil }, nil)
	j.Run(coords(10))
	assert.False(t, j.IsRunning())
}

func TestRunIsSafeForConcurrentBuildCallbacks(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[TileCoord]bool)

	j := New(8, func(c TileCoord) error {
		mu.Lock()
		seen[c] = true
		mu.Unlock()
		return nil
	}, nil)

	j.Run(coords(200))
	assert.Len(t, seen, 200)
}
