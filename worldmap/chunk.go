package worldmap

import "github.com/arl/gogeo/f32/d3"

// QuadsPerChunkSide is the number of terrain quads along one axis of a
// chunk's 8x8 quad grid.
const QuadsPerChunkSide = 8

// OuterLatticeSide and InnerLatticeSide describe the 17x17 height-sample
// lattice: a 9x9 outer grid at quad corners plus an 8x8 inner grid at quad
// centers.
const (
	OuterLatticeSide = QuadsPerChunkSide + 1 // 9
	InnerLatticeSide = QuadsPerChunkSide     // 8
	MaxHeightSamples = OuterLatticeSide*OuterLatticeSide + InnerLatticeSide*InnerLatticeSide // 145
)

// LiquidLayer is the liquid geometry contributed by one chunk, regardless of
// whether it came from the legacy per-chunk form or the modern consolidated
// form (the ADT parser keeps one form per chunk, preferring the modern one;
// when a tile carries both, the assembler logs a warning).
type LiquidLayer struct {
	Type    LiquidType
	Mesh    Mesh
	MinZ    float32
	MaxZ    float32
}

// LiquidType classifies a liquid surface for runtime filtering (e.g.
// swimmable vs. lethal).
type LiquidType uint8

const (
	LiquidNone LiquidType = iota
	LiquidWater
	LiquidOcean
	LiquidMagma
	LiquidSlime
)

// Chunk is 1/256th of a Tile: a 17x17 terrain height lattice, its
// triangulation, optional liquid, surface normals, and the sets of
// UniqueIDs of shared objects whose geometry falls within this chunk's XY
// footprint.
type Chunk struct {
	X, Y int // chunk coordinates within the owning tile, [0,15]

	// Heights holds up to MaxHeightSamples samples: indices
	// [0,OuterLatticeSide^2) are the outer 9x9 grid in row-major order,
	// followed by the 8x8 inner grid in row-major order.
	Heights [MaxHeightSamples]float32

	// Normals holds one normal per height sample, parallel to Heights.
	Normals [MaxHeightSamples]d3.Vec3

	// HoleMask has one bit set per masked-out quad, bit index = qy*8+qx.
	HoleMask uint64

	AreaID uint16

	Liquid       LiquidLayer
	HasLiquid    bool
	LiquidLegacy bool // true if populated from the legacy per-chunk form

	WorldObjects map[UniqueID]struct{}
	Doodads      map[UniqueID]struct{}
}

// NewChunk returns a Chunk positioned at (x,y) within its tile, with empty
// reference sets.
func NewChunk(x, y int) *Chunk {
	return &Chunk{
		X: x, Y: y,
		WorldObjects: make(map[UniqueID]struct{}),
		Doodads:      make(map[UniqueID]struct{}),
	}
}

func (c *Chunk) outerIndex(x, y int) int { return y*OuterLatticeSide + x }
func (c *Chunk) innerIndex(qx, qy int) int {
	return OuterLatticeSide*OuterLatticeSide + qy*InnerLatticeSide + qx
}

// holeSet reports whether quad (qx,qy) is masked out.
func (c *Chunk) holeSet(qx, qy int) bool {
	return c.HoleMask&(1<<uint(qy*QuadsPerChunkSide+qx)) != 0
}

// TerrainMesh triangulates the height lattice into world-space triangles,
// positioned within tile (tileX,tileY)'s world bounds. Each non-holed quad
// of the 8x8 grid is split into 4 triangles fanned around its center
// sample, per invariant 2: exactly 4*(64-holes(chunk)) triangles, never
// degenerate.
func (c *Chunk) TerrainMesh(tileX, tileY int) Mesh {
	cb := ChunkBounds(tileX, tileY, c.X, c.Y)
	step := ChunkSize / QuadsPerChunkSide

	pos := func(idx int, z float32) [3]float32 {
		row := idx / OuterLatticeSide
		col := idx % OuterLatticeSide
		return [3]float32{
			cb.Min[0] + float32(col)*step,
			cb.Min[1] + float32(row)*step,
			z,
		}
	}
	posInner := func(qx, qy int, z float32) [3]float32 {
		return [3]float32{
			cb.Min[0] + (float32(qx)+0.5)*step,
			cb.Min[1] + (float32(qy)+0.5)*step,
			z,
		}
	}

	var mesh Mesh
	for qy := 0; qy < QuadsPerChunkSide; qy++ {
		for qx := 0; qx < QuadsPerChunkSide; qx++ {
			if c.holeSet(qx, qy) {
				continue
			}
			tl := c.outerIndex(qx, qy)
			tr := c.outerIndex(qx+1, qy)
			bl := c.outerIndex(qx, qy+1)
			br := c.outerIndex(qx+1, qy+1)
			center := c.innerIndex(qx, qy)

			vtl := pos(tl, c.Heights[tl])
			vtr := pos(tr, c.Heights[tr])
			vbl := pos(bl, c.Heights[bl])
			vbr := pos(br, c.Heights[br])
			vc := posInner(qx, qy, c.Heights[center])

			// Fan the quad into 4 triangles around its center, winding
			// consistent (CCW looking down -Z) with the liquid mesh.
			mesh.AppendTriangle(vtl, vtr, vc)
			mesh.AppendTriangle(vtr, vbr, vc)
			mesh.AppendTriangle(vbr, vbl, vc)
			mesh.AppendTriangle(vbl, vtl, vc)
		}
	}
	return mesh
}

// HoleCount returns the number of quads masked out by HoleMask.
func (c *Chunk) HoleCount() int {
	n := 0
	for i := 0; i < QuadsPerChunkSide*QuadsPerChunkSide; i++ {
		if c.HoleMask&(1<<uint(i)) != 0 {
			n++
		}
	}
	return n
}
