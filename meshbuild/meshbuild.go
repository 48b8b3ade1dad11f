// Package meshbuild flattens a Tile's terrain, liquid, WorldObject and
// Doodad geometry into the single vertex/triangle/area-flag soup the
// navmesh generator consumes. Coordinates stay in the world's native
// Z-up convention here; navgen performs the Y-up swap recast/detour
// expect at the point it calls into them.
package meshbuild

import (
	"github.com/arl/gogeo/f32/d3"

	"github.com/worldnav/worldnav/worldmap"
)

// AreaFlag classifies a triangle's surface for the navmesh generator,
// layered on top of recast's own walkable/non-walkable area id.
type AreaFlag uint8

const (
	// AreaGround is ordinary walkable terrain or WorldObject structure.
	AreaGround AreaFlag = iota
	// AreaWater marks a swimmable liquid surface.
	AreaWater
	// AreaLava marks a lethal liquid surface (magma, slime) still crossed
	// by path *queries* but worth filtering by callers that care.
	AreaLava
	// AreaDoodad marks geometry contributed by a Doodad (standalone or
	// embedded in a WorldObject), kept walkable like AreaGround but tagged
	// distinctly so navgen can mark its polys for runtime exclusion (see
	// query.LineOfSight's includeDoodads parameter).
	AreaDoodad
)

// Soup is the flattened geometry handed to the navmesh generator for one
// tile: vertices, triangle indices and one area flag per triangle.
type Soup struct {
	Verts     []float32
	Triangles []int32
	Areas     []AreaFlag
}

// VertCount returns the number of vertices.
func (s *Soup) VertCount() int32 { return int32(len(s.Verts) / 3) }

// TriCount returns the number of triangles.
func (s *Soup) TriCount() int32 { return int32(len(s.Triangles) / 3) }

func (s *Soup) appendMesh(m worldmap.Mesh, area AreaFlag) {
	base := int32(s.VertCount())
	s.Verts = append(s.Verts, m.Verts...)
	for i := 0; i < m.TriCount(); i++ {
		a := base + int32(m.Indices[i*3])
		b := base + int32(m.Indices[i*3+1])
		c := base + int32(m.Indices[i*3+2])
		if degenerate(s.Verts, a, b, c) {
			continue
		}
		s.Triangles = append(s.Triangles, a, b, c)
		s.Areas = append(s.Areas, area)
	}
}

func degenerate(verts []float32, a, b, c int32) bool {
	va := d3.Vec3{verts[a*3], verts[a*3+1], verts[a*3+2]}
	vb := d3.Vec3{verts[b*3], verts[b*3+1], verts[b*3+2]}
	vc := d3.Vec3{verts[c*3], verts[c*3+1], verts[c*3+2]}
	e1 := vb.Sub(va)
	e2 := vc.Sub(va)
	cross := e1.Cross(e2)
	return cross.LenSqr() < 1e-10
}

func liquidArea(t worldmap.LiquidType) AreaFlag {
	switch t {
	case worldmap.LiquidMagma, worldmap.LiquidSlime:
		return AreaLava
	case worldmap.LiquidWater, worldmap.LiquidOcean:
		return AreaWater
	default:
		return AreaGround
	}
}

// Options controls which optional geometry categories are folded into a
// tile's soup.
type Options struct {
	// SkipDoodadsNotTouchingTerrain drops a referenced WorldObject's or
	// Doodad's triangles entirely if its placement bounds don't overlap the
	// tile's bounds (d3.Rectangle.Overlaps); despite the name it applies to
	// WorldObjects as well as Doodads.
	SkipDoodadsNotTouchingTerrain bool
}

// Build assembles tile's full geometry soup: its own terrain/liquid, plus
// every referenced WorldObject and Doodad resolved through m's dedup
// index. WorldObject and Doodad meshes are transformed into world space
// from their shared local-space Mesh using each placement's own
// transform, so two tiles sharing the same object each get their own
// correctly positioned copy in their own soup.
func Build(m *worldmap.Map, tile *worldmap.Tile, opts Options) Soup {
	var soup Soup

	for cy := 0; cy < worldmap.ChunksPerTile; cy++ {
		for cx := 0; cx < worldmap.ChunksPerTile; cx++ {
			c := tile.Chunks[cy][cx]
			soup.appendMesh(c.TerrainMesh(tile.X, tile.Y), AreaGround)
			if c.HasLiquid {
				soup.appendMesh(c.Liquid.Mesh, liquidArea(c.Liquid.Type))
			}
		}
	}

	for id := range tile.ReferencedWorldObjects() {
		w, ok := m.WorldObjectByID(id)
		if !ok {
			continue
		}
		pl := tile.WorldObjectRefs[id]
		if opts.SkipDoodadsNotTouchingTerrain && pl != nil && !pl.Bounds.Overlaps(tile.Bounds) {
			continue
		}
		soup.appendMesh(transformMesh(w.Mesh, pl), AreaGround)
		soup.appendMesh(transformMesh(w.LiquidMesh, pl), AreaWater)
		soup.appendMesh(transformMesh(w.DoodadMesh, pl), AreaDoodad)
	}

	for id := range tile.ReferencedDoodads() {
		d, ok := m.DoodadByID(id)
		if !ok {
			continue
		}
		pl := tile.DoodadRefs[id]
		if opts.SkipDoodadsNotTouchingTerrain && pl != nil && !pl.Bounds.Overlaps(tile.Bounds) {
			continue
		}
		soup.appendMesh(transformMesh(d.Mesh, pl), AreaDoodad)
	}

	return soup
}

// BuildGlobal assembles the geometry soup for a global map's single
// WorldObject: its structural, liquid and embedded-doodad meshes, with no
// per-tile placement transform to apply (a global WorldObject has exactly
// one, implicit, identity instance).
func BuildGlobal(w *worldmap.WorldObject) Soup {
	var soup Soup
	soup.appendMesh(w.Mesh, AreaGround)
	soup.appendMesh(w.LiquidMesh, AreaWater)
	soup.appendMesh(w.DoodadMesh, AreaDoodad)
	return soup
}

// transformMesh returns a copy of m with every vertex passed through
// pl.Transform. A nil placement (the global-WMO case, which has no
// per-tile instance transform) returns m unchanged.
func transformMesh(m worldmap.Mesh, pl *worldmap.Placement) worldmap.Mesh {
	if pl == nil {
		return m
	}
	out := worldmap.Mesh{
		Verts:   make([]float32, 0, len(m.Verts)),
		Indices: append([]uint32(nil), m.Indices...),
	}
	for i := 0; i < m.VertCount(); i++ {
		local := m.Vertex(i)
		world := pl.Transform(d3.Vec3{local[0], local[1], local[2]})
		out.Verts = append(out.Verts, world[0], world[1], world[2])
	}
	return out
}
