package worldmap

import (
	"sync"

	"github.com/worldnav/worldnav/resultcode"
)

// Map is a named collection of up to GridSizexGridSize Tiles, or a single
// global WorldObject when IsGlobal. It exclusively owns every Tile,
// WorldObject and Doodad it has loaded; Tiles and Chunks only ever hold
// UniqueIDs, looked up back through the Map's dedup index.
type Map struct {
	Name string

	mu    sync.RWMutex
	tiles [GridSize][GridSize]*Tile

	wmoIndex    *dedupIndex
	doodadIndex *dedupIndex

	isGlobal   bool
	globalWMO  *WorldObject
	globalOnce sync.Once
	globalErr  error
}

// NewMap constructs an empty Map. isGlobal marks a map whose geography is a
// single WorldObject rather than a 64x64 tile grid.
func NewMap(name string, isGlobal bool) *Map {
	return &Map{
		Name:        name,
		isGlobal:    isGlobal,
		wmoIndex:    newDedupIndex(),
		doodadIndex: newDedupIndex(),
	}
}

// IsGlobal reports whether m has a top-level single WorldObject instead of
// a tile grid.
func (m *Map) IsGlobal() bool { return m.isGlobal }

// Tile returns the tile at (x,y) if it has already been assembled and
// stored via SetTile, or nil otherwise. Safe for concurrent callers
// (readers take the shared lock; see §5 read-mostly runtime model).
func (m *Map) Tile(x, y int) *Tile {
	if !InRange(x, y) {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tiles[y][x]
}

// SetTile stores an assembled tile. Only the worker that built it should
// call this, exactly once, per §3's lifecycle rule.
func (m *Map) SetTile(t *Tile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[t.Y][t.X] = t
}

// WorldObjectByID looks up a previously-inserted shared WorldObject.
func (m *Map) WorldObjectByID(id UniqueID) (*WorldObject, bool) {
	v, ok := m.wmoIndex.get(id)
	if !ok {
		return nil, false
	}
	return v.(*WorldObject), true
}

// DoodadByID looks up a previously-inserted shared Doodad.
func (m *Map) DoodadByID(id UniqueID) (*Doodad, bool) {
	v, ok := m.doodadIndex.get(id)
	if !ok {
		return nil, false
	}
	return v.(*Doodad), true
}

// EnsureWorldObject resolves id through the dedup index: if id is already
// present (or being loaded by another worker), it waits for and returns
// that result; otherwise the caller becomes the winning worker and load is
// invoked to parse it. load's result (success or failure) is published to
// any concurrent waiters. This implements the "shared-object load protocol"
// of §4.5: exactly one parse per UniqueId, losers read back the winner's
// result (scenario S4).
func (m *Map) EnsureWorldObject(id UniqueID, load func() (*WorldObject, error)) (*WorldObject, error) {
	v, err := m.wmoIndex.ensure(id, func() (interface{}, error) { return load() })
	if err != nil {
		return nil, err
	}
	return v.(*WorldObject), nil
}

// EnsureDoodad is EnsureWorldObject's counterpart for doodads.
func (m *Map) EnsureDoodad(id UniqueID, load func() (*Doodad, error)) (*Doodad, error) {
	v, err := m.doodadIndex.ensure(id, func() (interface{}, error) { return load() })
	if err != nil {
		return nil, err
	}
	return v.(*Doodad), nil
}

// WorldObjectIDs returns every UniqueID currently in the WorldObject dedup
// index, for serialization of the per-map BVH index.
func (m *Map) WorldObjectIDs() []UniqueID {
	return m.wmoIndex.ids()
}

// SetGlobalWorldObject records m's single global WorldObject. Valid only
// when IsGlobal().
func (m *Map) SetGlobalWorldObject(w *WorldObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalWMO = w
}

// GlobalWorldObject returns the map's global WorldObject, or
// resultcode.ErrOutOfRange if this Map is not global.
func (m *Map) GlobalWorldObject() (*WorldObject, error) {
	if !m.isGlobal {
		return nil, resultcode.ErrOutOfRange
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.globalWMO == nil {
		return nil, resultcode.ErrNotLoaded
	}
	return m.globalWMO, nil
}

// dedupIndex is a generic UniqueID -> value map guarded by a mutex, with a
// per-entry "loading" sentinel so concurrent first-sight loads of the same
// id collapse into a single parse (equivalent to a keyed singleflight
// group). Heavy parsing happens in the caller-supplied load function,
// entirely outside the mutex; only the bookkeeping around it is locked.
type dedupIndex struct {
	mu      sync.Mutex
	entries map[UniqueID]*dedupEntry
}

type dedupEntry struct {
	done  chan struct{}
	value interface{}
	err   error
}

func newDedupIndex() *dedupIndex {
	return &dedupIndex{entries: make(map[UniqueID]*dedupEntry)}
}

func (d *dedupIndex) get(id UniqueID) (interface{}, bool) {
	d.mu.Lock()
	e, ok := d.entries[id]
	d.mu.Unlock()
	if !ok {
		return nil, false
	}
	<-e.done
	if e.err != nil {
		return nil, false
	}
	return e.value, true
}

func (d *dedupIndex) ensure(id UniqueID, load func() (interface{}, error)) (interface{}, error) {
	d.mu.Lock()
	e, existing := d.entries[id]
	if !existing {
		e = &dedupEntry{done: make(chan struct{})}
		d.entries[id] = e
	}
	d.mu.Unlock()

	if existing {
		<-e.done
		return e.value, e.err
	}

	// winning worker: parse outside the lock, then publish.
	e.value, e.err = load()
	close(e.done)
	return e.value, e.err
}

// ids returns every UniqueID currently resolved (successfully loaded) in
// the index. Append-only during a build (invariant 6): entries are never
// removed except at Map teardown, so no snapshot race with removal exists
// mid-build.
func (d *dedupIndex) ids() []UniqueID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]UniqueID, 0, len(d.entries))
	for id, e := range d.entries {
		select {
		case <-e.done:
			if e.err == nil {
				out = append(out, id)
			}
		default:
		}
	}
	return out
}

// Teardown releases every Tile, WorldObject and Doodad owned by m. After
// Teardown, m must not be used again.
func (m *Map) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for y := range m.tiles {
		for x := range m.tiles[y] {
			m.tiles[y][x] = nil
		}
	}
	m.wmoIndex = newDedupIndex()
	m.doodadIndex = newDedupIndex()
	m.globalWMO = nil
}
