package worldmap

import (
	"math"

	"github.com/arl/gogeo/f32/d3"
)

// Tile is one (x,y) cell of the 64x64 world grid (an ADT). It owns
// ChunksPerTile x ChunksPerTile Chunks and tracks every shared WorldObject
// and Doodad referenced anywhere within it.
//
// A Tile is created on first reference, mutated only by the worker
// assembling it, and becomes immutable once handed to the mesh builder —
// callers outside the owning worker must not mutate it.
type Tile struct {
	X, Y int

	Chunks [ChunksPerTile][ChunksPerTile]*Chunk

	// Bounds grows monotonically as geometry is added (invariant 5); its XY
	// extent is fixed at construction, Z starts empty (Min > Max) and is
	// widened by GrowZ.
	Bounds d3.Rectangle
	zSet   bool

	// WorldObjectRefs/DoodadRefs are set for UniqueIDs the Map's dedup
	// index has been successfully populated for, so invariant 1 can be
	// checked after assembly completes.
	WorldObjectRefs map[UniqueID]*Placement
	DoodadRefs      map[UniqueID]*Placement
}

// NewTile allocates an empty Tile at (x,y) with its XY bounds precomputed
// and all chunks constructed.
func NewTile(x, y int) *Tile {
	t := &Tile{
		X:               x,
		Y:               y,
		Bounds:          TileBounds(x, y),
		WorldObjectRefs: make(map[UniqueID]*Placement),
		DoodadRefs:      make(map[UniqueID]*Placement),
	}
	xy := TileBounds(x, y)
	t.Bounds = d3.Rectangle{Min: xy.Min, Max: xy.Max}
	// Z starts inverted (empty) so the first GrowZ call always takes.
	t.Bounds.Min[2] = math.MaxFloat32
	t.Bounds.Max[2] = -math.MaxFloat32

	for cy := 0; cy < ChunksPerTile; cy++ {
		for cx := 0; cx < ChunksPerTile; cx++ {
			t.Chunks[cy][cx] = NewChunk(cx, cy)
		}
	}
	return t
}

// GrowZ widens the tile's Z bounds to include [zmin,zmax], never shrinking
// it (invariant 5).
func (t *Tile) GrowZ(zmin, zmax float32) {
	if zmin < t.Bounds.Min[2] {
		t.Bounds.Min[2] = zmin
	}
	if zmax > t.Bounds.Max[2] {
		t.Bounds.Max[2] = zmax
	}
}

// InRange reports whether (x,y) is a valid tile coordinate.
func InRange(x, y int) bool {
	return x >= 0 && x < GridSize && y >= 0 && y < GridSize
}

// ChunkContainingXY returns the chunk whose footprint half-openly contains
// world point (x,y), and ok=false if the point falls outside the tile
// entirely.
func (t *Tile) ChunkContainingXY(x, y float32) (cx, cy int, ok bool) {
	if !InHalfOpenXY(t.Bounds, x, y) {
		return 0, 0, false
	}
	fx := (x - t.Bounds.Min[0]) / ChunkSize
	fy := (y - t.Bounds.Min[1]) / ChunkSize
	cx = int(fx)
	cy = int(fy)
	// a vertex exactly on the tile's max edge maps to ChunksPerTile via the
	// division above; invariant 4 assigns it to the last chunk instead.
	if cx >= ChunksPerTile {
		cx = ChunksPerTile - 1
	}
	if cy >= ChunksPerTile {
		cy = ChunksPerTile - 1
	}
	// the division also puts a point on an interior chunk edge into the
	// chunk above it; invariant 4 counts the max edge, so step back to the
	// chunk whose max bound the point lies on.
	if cx > 0 && x <= ChunkBounds(t.X, t.Y, cx-1, cy).Max[0] {
		cx--
	}
	if cy > 0 && y <= ChunkBounds(t.X, t.Y, cx, cy-1).Max[1] {
		cy--
	}
	return cx, cy, true
}

// AssignWorldObjectVertex registers uid in every chunk whose footprint
// contains a vertex at (x,y). Callers iterate a placed object's
// world-space vertices and call this once per vertex; registering the same
// (chunk,uid) pair twice is a no-op since the backing set dedups.
func (t *Tile) AssignWorldObjectVertex(uid UniqueID, x, y float32) {
	cx, cy, ok := t.ChunkContainingXY(x, y)
	if !ok {
		return
	}
	t.Chunks[cy][cx].WorldObjects[uid] = struct{}{}
}

// AssignDoodadVertex is AssignWorldObjectVertex's counterpart for doodads.
func (t *Tile) AssignDoodadVertex(uid UniqueID, x, y float32) {
	cx, cy, ok := t.ChunkContainingXY(x, y)
	if !ok {
		return
	}
	t.Chunks[cy][cx].Doodads[uid] = struct{}{}
}

// ReferencedWorldObjects returns the union of every chunk's WorldObjects set.
func (t *Tile) ReferencedWorldObjects() map[UniqueID]struct{} {
	out := make(map[UniqueID]struct{})
	for _, row := range t.Chunks {
		for _, c := range row {
			for id := range c.WorldObjects {
				out[id] = struct{}{}
			}
		}
	}
	return out
}

// ReferencedDoodads returns the union of every chunk's Doodads set.
func (t *Tile) ReferencedDoodads() map[UniqueID]struct{} {
	out := make(map[UniqueID]struct{})
	for _, row := range t.Chunks {
		for _, c := range row {
			for id := range c.Doodads {
				out[id] = struct{}{}
			}
		}
	}
	return out
}
