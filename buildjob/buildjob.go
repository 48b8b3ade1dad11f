// Package buildjob drives the parallel build of every tile in a Map: a
// shared FIFO queue of (x,y) coordinates consumed by a fixed pool of
// worker goroutines, with a main thread that polls worker liveness every
// 500ms and returns once every worker has drained the queue — mirroring
// the source build tool's std::thread worker pool and its
// sleep_for(500ms) completion loop.
package buildjob

import (
	"runtime"
	"sync"
	"time"

	"github.com/worldnav/worldnav/buildlog"
)

// TileCoord is one (x,y) cell of the 64x64 tile grid to build.
type TileCoord struct{ X, Y int }

// BuildFunc builds a single tile. Returning an error marks that one tile
// failed without aborting the rest of the job (§4.7's failure policy):
// a corrupt or missing ADT for one tile must not stop the map build.
type BuildFunc func(c TileCoord) error

// Result records one tile's outcome.
type Result struct {
	Coord TileCoord
	Err   error
}

// Job runs a pool of workers over a fixed set of tiles.
type Job struct {
	Jobs  int
	Build BuildFunc
	Log   *buildlog.Logger

	mu      sync.Mutex
	queue   []TileCoord
	results []Result

	running []int32 // 1 while worker i holds a tile, 0 otherwise; read via IsRunning
	runMu   sync.Mutex
}

// New constructs a Job with the given worker count (at least 1) and
// per-tile build function.
func New(jobs int, build BuildFunc, log *buildlog.Logger) *Job {
	if jobs < 1 {
		jobs = 1
	}
	return &Job{Jobs: jobs, Build: build, Log: log, running: make([]int32, jobs)}
}

// Run enqueues every coord in tiles and blocks until all workers have
// drained the queue, polling liveness every 500ms in the style of the
// source tool's main loop. It returns every tile's result, including
// failures, in no particular order.
func (j *Job) Run(tiles []TileCoord) []Result {
	j.queue = append([]TileCoord(nil), tiles...)
	j.results = make([]Result, 0, len(tiles))

	var wg sync.WaitGroup
	wg.Add(j.Jobs)
	for i := 0; i < j.Jobs; i++ {
		go j.worker(i, &wg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			j.mu.Lock()
			out := append([]Result(nil), j.results...)
			j.mu.Unlock()
			return out
		case <-ticker.C:
			// liveness poll: nothing to act on besides giving the caller a
			// place to hook progress reporting in the future; the source
			// tool's equivalent loop only checks worker.IsRunning().
		}
	}
}

// worker pins itself to an OS thread for the duration of the job, the
// same way the source tool's one-thread-per-worker model gives each
// build worker an uncontended core, and pulls coords off the shared
// queue until it's empty.
func (j *Job) worker(idx int, wg *sync.WaitGroup) {
	defer wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		coord, ok := j.next()
		if !ok {
			return
		}
		j.setRunning(idx, true)
		err := j.Build(coord)
		j.setRunning(idx, false)
		if err != nil && j.Log != nil {
			j.Log.Warningf("tile (%d,%d): %v", coord.X, coord.Y, err)
		}
		j.mu.Lock()
		j.results = append(j.results, Result{Coord: coord, Err: err})
		j.mu.Unlock()
	}
}

func (j *Job) next() (TileCoord, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.queue) == 0 {
		return TileCoord{}, false
	}
	c := j.queue[0]
	j.queue = j.queue[1:]
	return c, true
}

func (j *Job) setRunning(idx int, running bool) {
	j.runMu.Lock()
	defer j.runMu.Unlock()
	if running {
		j.running[idx] = 1
	} else {
		j.running[idx] = 0
	}
}

// IsRunning reports whether any worker currently holds a tile, matching
// the source tool's Worker::IsRunning query.
func (j *Job) IsRunning() bool {
	j.runMu.Lock()
	defer j.runMu.Unlock()
	for _, r := range j.running {
		if r != 0 {
			return true
		}
	}
	return false
}
