// Package query is the runtime half of this system: it loads the
// serialized per-tile navmesh artifacts navfile writes and answers
// path, height and line-of-sight queries against them, wrapping
// detour.NavMeshQuery the way sample/tilemesh/builder.go's own query use
// (see detour/path_test.go) demonstrates.
package query

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/arl/go-detour/detour"
	"github.com/arl/go-detour/sample"
	"github.com/arl/gogeo/f32/d3"

	"github.com/worldnav/worldnav/navfile"
	"github.com/worldnav/worldnav/resultcode"
	"github.com/worldnav/worldnav/worldmap"
)

// maxPathPolys bounds FindPath's internal poly-ref buffer; a path that
// needs more polys than this is treated as a query failure rather than
// grown unbounded, matching the fixed-capacity-buffer style the C ABI
// exposes to callers.
const maxPathPolys = 2048

const maxNodes = 4096

// tileSlot holds one loaded tile's query-time state: its decoded bounds,
// area grid, and the detour tile ref it was added to the shared NavMesh
// under, plus a reference count so repeated LoadTile calls are cheap
// no-ops rather than double-inserts.
type tileSlot struct {
	areaIDs [256]uint16
	bounds  [6]float32
	tileRef detour.TileRef
	refs    int
}

// Map is the runtime handle for one loaded game map: a detour NavMesh
// assembled tile-by-tile from <out>/Nav/<Map>/<x>_<y>.nav files, plus the
// area table used to resolve raw AreaIds.
type Map struct {
	Name  string
	outDir string
	area  *area2Table

	mu      sync.RWMutex
	nav     detour.NavMesh
	navQ    *detour.NavMeshQuery
	tiles   map[tileKey]*tileSlot
	initted bool
}

type tileKey struct{ X, Y int32 }

// area2Table is a tiny indirection so query doesn't import format/area
// directly for the zone/area lookup — the area table is supplied by the
// caller (usually the same one used at build time) when NewMap is
// constructed, consistent with OQ-1's "optional enrichment" resolution.
type area2Table interface {
	Resolve(raw uint16) (zoneID, areaID uint16)
}

// NewMap constructs a runtime Map reading tile artifacts from
// <outDir>/Nav/<name>; the BVH index is not read. areaTable may be nil.
func NewMap(outDir, name string, areaTable area2Table) *Map {
	return &Map{
		Name:   name,
		outDir: outDir,
		area:   areaTable,
		tiles:  make(map[tileKey]*tileSlot),
	}
}

func (m *Map) ensureNavMesh(tileWidth, tileHeight float32, orig [3]float32) error {
	if m.initted {
		return nil
	}
	var params detour.NavMeshParams
	params.Orig = orig
	params.TileWidth = tileWidth
	params.TileHeight = tileHeight
	params.MaxTiles = worldmap.GridSize * worldmap.GridSize
	params.MaxPolys = 1 << 15
	status := m.nav.Init(&params)
	if detour.StatusFailed(status) {
		return resultcode.Wrap(resultcode.ErrInternal, "query: navmesh init failed")
	}
	status, q := detour.NewNavMeshQuery(&m.nav, maxNodes)
	if detour.StatusFailed(status) {
		return resultcode.Wrap(resultcode.ErrInternal, "query: navmesh query init failed")
	}
	m.navQ = q
	m.initted = true
	return nil
}

// LoadTile loads tile (x,y)'s navmesh file into the Map if it isn't
// already loaded, and bumps its reference count. Idempotent and safe to
// call concurrently: a tile already loaded is a no-op besides the
// refcount bump. Corresponds to the C ABI's pathfind_load_adt.
func (m *Map) LoadTile(x, y int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tileKey{x, y}
	if slot, ok := m.tiles[key]; ok {
		slot.refs++
		return nil
	}

	data, err := os.ReadFile(navfile.TilePath(m.outDir, m.Name, int(x), int(y)))
	if err != nil {
		if os.IsNotExist(err) {
			return resultcode.ErrNotFound
		}
		return resultcode.Wrap(err, "query: read tile")
	}
	t, err := navfile.ReadTile(data)
	if err != nil {
		return err
	}

	if err := m.ensureNavMesh(worldmap.TileSize, worldmap.TileSize, [3]float32{t.Bounds[0], t.Bounds[1], t.Bounds[2]}); err != nil {
		return err
	}

	status, ref := m.nav.AddTile(t.Mesh, detour.TileRef(0))
	if detour.StatusFailed(status) {
		return resultcode.Wrap(resultcode.ErrInternal, fmt.Sprintf("query: add tile (%d,%d) failed", x, y))
	}

	m.tiles[key] = &tileSlot{areaIDs: t.AreaIDs, bounds: t.Bounds, tileRef: ref, refs: 1}
	return nil
}

// LoadTileAt loads whichever tile contains world position (wx, wy).
func (m *Map) LoadTileAt(wx, wy float32) error {
	x, y := worldTileCoord(wx, wy)
	return m.LoadTile(x, y)
}

// TileCoordAt returns the (x,y) tile grid coordinate containing world
// position (wx, wy), the same lookup LoadTileAt uses internally. Exported
// for callers (the capi ABI's pathfind_load_adt_at) that need to report
// back which tile a world-position load resolved to.
func TileCoordAt(wx, wy float32) (x, y int32) {
	return worldTileCoord(wx, wy)
}

func worldTileCoord(wx, wy float32) (int32, int32) {
	b := worldmap.TileBounds(0, 0)
	origin := b.Max[0]
	x := int32((origin - wx) / worldmap.TileSize)
	y := int32((origin - wy) / worldmap.TileSize)
	return x, y
}

// LoadAllTiles loads every <x>_<y>.nav file found under the map's Nav
// directory and returns the count successfully loaded. Tiles whose files
// are missing or corrupt are skipped, not fatal to the rest of the load
// (mirrors the build side's per-tile failure isolation, §4.7).
func (m *Map) LoadAllTiles() (int, error) {
	count := 0
	for x := int32(0); x < worldmap.GridSize; x++ {
		for y := int32(0); y < worldmap.GridSize; y++ {
			if err := m.LoadTile(x, y); err == nil {
				count++
			}
		}
	}
	return count, nil
}

// GetZoneAndArea resolves the raw chunk AreaId at world position (x,y,z)
// into a (zone, area) pair via the Map's area table (or the raw id,
// unchanged, with no table configured — OQ-1).
func (m *Map) GetZoneAndArea(x, y, z float32) (zone, area uint32, err error) {
	tx, ty := worldTileCoord(x, y)

	m.mu.RLock()
	slot, ok := m.tiles[tileKey{tx, ty}]
	m.mu.RUnlock()
	if !ok {
		return 0, 0, resultcode.ErrOutOfRange
	}

	tb := worldmap.TileBounds(int(tx), int(ty))
	cx := int((x - tb.Min[0]) / worldmap.ChunkSize)
	cy := int((y - tb.Min[1]) / worldmap.ChunkSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= worldmap.ChunksPerTile {
		cx = worldmap.ChunksPerTile - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= worldmap.ChunksPerTile {
		cy = worldmap.ChunksPerTile - 1
	}
	raw := slot.areaIDs[cy*worldmap.ChunksPerTile+cx]

	if m.area == nil {
		return uint32(raw), uint32(raw), nil
	}
	z2, a2 := m.area.Resolve(raw)
	return uint32(z2), uint32(a2), nil
}

// FindPath finds a polygon path from 'from' to 'to' and writes up to
// len(out) world-space waypoints into out, returning the count actually
// written. Returns resultcode.ErrTooSmall (with the true count) if out is
// too small to hold the full path, matching the C ABI's "report the size,
// don't partially truncate silently" contract.
func (m *Map) FindPath(from, to [3]float32, out [][3]float32) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initted || m.navQ == nil {
		return 0, resultcode.ErrNotLoaded
	}

	filter := detour.NewStandardQueryFilter()
	extents := d3.NewVec3XYZ(4, 8, 4)

	fromV := toRecastVec(from)
	toV := toRecastVec(to)

	st, startRef, startPos := m.navQ.FindNearestPoly(fromV, extents, filter)
	if detour.StatusFailed(st) || startRef == 0 {
		return 0, resultcode.ErrOutOfRange
	}
	st, endRef, endPos := m.navQ.FindNearestPoly(toV, extents, filter)
	if detour.StatusFailed(st) || endRef == 0 {
		return 0, resultcode.ErrOutOfRange
	}

	polys := make([]detour.PolyRef, maxPathPolys)
	polyCount, st := m.navQ.FindPath(startRef, endRef, startPos, endPos, filter, polys)
	if detour.StatusFailed(st) || polyCount == 0 {
		return 0, resultcode.ErrOutOfRange
	}

	// straight/flags/refs are sized to maxPathPolys, not len(out): detour
	// only ever writes as many points as the scratch buffer it's handed, so
	// sizing it to the caller's (possibly much smaller) out buffer would
	// make the true path length unrecoverable once it overflows out. Run
	// the query into the full-size scratch first, then compare the real
	// count against len(out).
	straight := make([]d3.Vec3, maxPathPolys)
	for i := range straight {
		straight[i] = d3.NewVec3()
	}
	flags := make([]uint8, maxPathPolys)
	refs := make([]detour.PolyRef, maxPathPolys)

	n, st := m.navQ.FindStraightPath(startPos, endPos, polys[:polyCount], straight, flags, refs, 0)
	if detour.StatusFailed(st) {
		return 0, resultcode.ErrInternal
	}
	if n > len(out) {
		return n, resultcode.ErrTooSmall
	}
	for i := 0; i < n; i++ {
		out[i] = fromRecastVec(straight[i])
	}
	return n, nil
}

// FindHeights returns every navmesh surface Z value at world (x,y),
// ordered top-down, written into out. If out is too small it writes
// nothing and returns resultcode.ErrTooSmall with the full count. A position with no
// nearby polygon on any loaded tile yields zero results, not an error.
func (m *Map) FindHeights(x, y float32, out []float32) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initted || m.navQ == nil {
		return 0, resultcode.ErrNotLoaded
	}

	filter := detour.NewStandardQueryFilter()
	var found []float32
	// Probe a generous Z column: detour's FindNearestPoly works from a
	// single search center, so sample several heights top-down and
	// dedup near-identical hits, approximating "all surfaces under this
	// column" without a native multi-hit query.
	for _, z := range sampleColumn() {
		center := d3.NewVec3XYZ(x, z, y)
		extents := d3.NewVec3XYZ(2, z, 2)
		st, ref, pt := m.navQ.FindNearestPoly(center, extents, filter)
		if detour.StatusFailed(st) || ref == 0 {
			continue
		}
		h := pt[1]
		dup := false
		for _, f := range found {
			if abs32(f-h) < 0.05 {
				dup = true
				break
			}
		}
		if !dup {
			found = append(found, h)
		}
	}

	sortDescending(found)
	if len(found) > len(out) {
		return len(found), resultcode.ErrTooSmall
	}
	copy(out, found)
	return len(found), nil
}

// FindHeight returns the expected Z reached walking from 'from' toward
// the XY position toXY along the surface: the Z of the last waypoint of
// the path FindPath returns.
func (m *Map) FindHeight(from [3]float32, toXY [2]float32) (float32, error) {
	// Sized to maxPathPolys, not some small fixed count: FindPath now
	// reports ErrTooSmall without writing out at all when it doesn't fit,
	// and we only want the last point, not a fixed prefix.
	out := make([][3]float32, maxPathPolys)
	n, err := m.FindPath(from, [3]float32{toXY[0], toXY[1], from[2]}, out)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, resultcode.ErrOutOfRange
	}
	return out[n-1][2], nil
}

// LineOfSight reports whether 'to' is visible from 'from' without any
// navmesh obstruction in between. Doodad geometry is baked into the same
// navmesh as everything else (see meshbuild.Build), but navgen tags its
// polys with the PolyFlagsDoor bit (see navgen.Build's pmesh.Flags switch);
// when includeDoodads is true, the query filter excludes that bit, and
// detour's raycast stops at excluded polys as it does at walls, so doodads
// obstruct the line; when false, doodad polys are crossed like any other
// surface. No second navmesh build is needed.
func (m *Map) LineOfSight(from, to [3]float32, includeDoodads bool) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initted || m.navQ == nil {
		return false, resultcode.ErrNotLoaded
	}

	filter := detour.NewStandardQueryFilter()
	if includeDoodads {
		filter.SetExcludeFlags(sample.PolyFlagsDoor)
	}
	extents := d3.NewVec3XYZ(4, 8, 4)

	fromV := toRecastVec(from)
	toV := toRecastVec(to)
	st, startRef, startPos := m.navQ.FindNearestPoly(fromV, extents, filter)
	if detour.StatusFailed(st) || startRef == 0 {
		return false, resultcode.ErrOutOfRange
	}

	hit, st := m.navQ.Raycast(startRef, startPos, toV, filter, 0, 0)
	if detour.StatusFailed(st) {
		return false, resultcode.ErrInternal
	}
	// hit.T reaching math.MaxFloat32 means no wall was hit before the
	// ray reached its end position: an unobstructed line of sight.
	return hit.T >= math.MaxFloat32, nil
}

func toRecastVec(v [3]float32) d3.Vec3 { return d3.Vec3{v[0], v[2], v[1]} }
func fromRecastVec(v d3.Vec3) [3]float32 { return [3]float32{v[0], v[2], v[1]} }

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func sortDescending(vals []float32) {
	for i := 1; i < len(vals); i++ {
		v := vals[i]
		j := i - 1
		for j >= 0 && vals[j] < v {
			vals[j+1] = vals[j]
			j--
		}
		vals[j+1] = v
	}
}

func sampleColumn() []float32 {
	// Coarse top-down probe range; real world Z extents rarely exceed
	// this band. Tuned for build-time agent height, not a hard limit.
	const top, bottom, step = 2000.0, -500.0, 4.0
	n := int((top - bottom) / step)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(top) - float32(i)*step
	}
	return out
}
