// Package worldmap holds the in-memory spatial model described by the
// world's tile grid — Tiles, Chunks, shared WorldObjects and Doodads — and
// the Map that owns them, deduplicates shared objects across tiles, and
// assembles a Tile's geometry on demand.
package worldmap

import "github.com/arl/gogeo/f32/d3"

// GridSize is the number of tiles along one axis of a map.
const GridSize = 64

// ChunksPerTile is the number of chunks along one axis of a tile.
const ChunksPerTile = 16

// TileSize is the world-unit extent of one tile's side, matching the
// source format's fixed ADT size.
const TileSize float32 = 533.33333

// ChunkSize is the world-unit extent of one chunk's side.
const ChunkSize float32 = TileSize / ChunksPerTile

// UniqueID identifies one placed instance of a shared WorldObject or
// Doodad; it is the key of the Map's dedup index.
type UniqueID uint32

// Mesh is a flat triangle soup: Verts is a flat xyz array (len%3==0),
// Indices group into triangles of 3 (len%3==0).
type Mesh struct {
	Verts   []float32
	Indices []uint32
}

// VertCount returns the number of vertices in m.
func (m *Mesh) VertCount() int { return len(m.Verts) / 3 }

// TriCount returns the number of triangles in m.
func (m *Mesh) TriCount() int { return len(m.Indices) / 3 }

// Vertex returns the i'th vertex as a Vec3.
func (m *Mesh) Vertex(i int) d3.Vec3 {
	return d3.Vec3{m.Verts[i*3], m.Verts[i*3+1], m.Verts[i*3+2]}
}

// AppendTriangle appends the three vertices of one triangle and the index
// triplet pointing at them.
func (m *Mesh) AppendTriangle(a, b, c [3]float32) {
	base := uint32(m.VertCount())
	m.Verts = append(m.Verts, a[0], a[1], a[2], b[0], b[1], b[2], c[0], c[1], c[2])
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Bounds computes the axis-aligned bounding box of m. Empty meshes return
// the zero Rectangle.
func (m *Mesh) Bounds() d3.Rectangle {
	if m.VertCount() == 0 {
		return d3.ZR
	}
	v0 := m.Vertex(0)
	r := d3.Rect(v0[0], v0[1], v0[2], v0[0], v0[1], v0[2])
	for i := 1; i < m.VertCount(); i++ {
		v := m.Vertex(i)
		if v[0] < r.Min[0] {
			r.Min[0] = v[0]
		}
		if v[1] < r.Min[1] {
			r.Min[1] = v[1]
		}
		if v[2] < r.Min[2] {
			r.Min[2] = v[2]
		}
		if v[0] > r.Max[0] {
			r.Max[0] = v[0]
		}
		if v[1] > r.Max[1] {
			r.Max[1] = v[1]
		}
		if v[2] > r.Max[2] {
			r.Max[2] = v[2]
		}
	}
	return r
}

// TileBounds computes the axis-aligned XY bounds of tile (x,y), following the
// source's axis convention: increasing tile-X decreases world-X, increasing
// tile-Y decreases world-Y. Z is left at zero; callers grow it from
// contained geometry (invariant 5).
func TileBounds(x, y int) d3.Rectangle {
	// world origin sits at the center of the 64x64 grid, (32,32) in tile
	// space, following the conventional ADT->world transform.
	const origin = float32(GridSize/2) * TileSize

	maxX := origin - float32(x)*TileSize
	minX := maxX - TileSize
	maxY := origin - float32(y)*TileSize
	minY := maxY - TileSize

	return d3.Rectangle{
		Min: d3.Vec3{minX, minY, 0},
		Max: d3.Vec3{maxX, maxY, 0},
	}
}

// ChunkBounds computes the XY bounds of chunk (cx,cy) within tile (x,y).
func ChunkBounds(x, y, cx, cy int) d3.Rectangle {
	tb := TileBounds(x, y)
	minX := tb.Min[0] + float32(cx)*ChunkSize
	minY := tb.Min[1] + float32(cy)*ChunkSize
	return d3.Rectangle{
		Min: d3.Vec3{minX, minY, 0},
		Max: d3.Vec3{minX + ChunkSize, minY + ChunkSize, 0},
	}
}

// InHalfOpenXY implements invariant 4's edge policy: a vertex at X or Y
// equal to the rectangle's max bound is counted, equal to min bound is not.
// This yields exactly-once coverage of shared edges across the tile grid.
func InHalfOpenXY(r d3.Rectangle, x, y float32) bool {
	return x > r.Min[0] && x <= r.Max[0] && y > r.Min[1] && y <= r.Max[1]
}
