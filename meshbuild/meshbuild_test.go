package meshbuild

import (
	"testing"

	"github.com/arl/gogeo/f32/d3"
	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/worldmap"
)

func flatTile(x, y int, z float32) *worldmap.Tile {
	tile := worldmap.NewTile(x, y)
	for cy := 0; cy < worldmap.ChunksPerTile; cy++ {
		for cx := 0; cx < worldmap.ChunksPerTile; cx++ {
			c := tile.Chunks[cy][cx]
			for i := range c.Heights {
				c.Heights[i] = z
			}
		}
	}
	return tile
}

func TestBuildProducesOneTrianglePerQuadFanTimesChunksWithNoHoles(t *testing.T) {
	m := worldmap.NewMap("Azeroth", false)
	tile := flatTile(0, 0, 5)
	m.SetTile(tile)

	soup := Build(m, tile, Options{})

	quadsPerChunk := worldmap.QuadsPerChunkSide * worldmap.QuadsPerChunkSide
	want := int32(4 * quadsPerChunk * worldmap.ChunksPerTile * worldmap.ChunksPerTile)
	assert.Equal(t, want, soup.TriCount())
	assert.Equal(t, int(soup.TriCount()), len(soup.Areas))
	for _, a := range soup.Areas {
		assert.Equal(t, AreaGround, a)
	}
}

func TestBuildSkipsWorldObjectNotOverlappingTile(t *testing.T) {
	m := worldmap.NewMap("Azeroth", false)
	tile := worldmap.NewTile(0, 0)

	w := &worldmap.WorldObject{ID: 1}
	w.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	m.EnsureWorldObject(1, func() (*worldmap.WorldObject, error) { return w, nil })

	// place the object far outside tile's bounds and register a reference
	// (as if a halo load pulled it in from a neighboring tile)
	far := tile.Bounds.Max[0] + 10000
	tile.WorldObjectRefs[1] = &worldmap.Placement{
		UniqueID: 1,
		Bounds:   d3.Rectangle{Min: d3.Vec3{far, far, 0}, Max: d3.Vec3{far + 1, far + 1, 1}},
	}
	tile.Chunks[0][0].WorldObjects[1] = struct{}{}
	m.SetTile(tile)

	soup := Build(m, tile, Options{SkipDoodadsNotTouchingTerrain: true})
	// only terrain triangles should be present; the out-of-range WMO is skipped
	for _, a := range soup.Areas {
		assert.Equal(t, AreaGround, a)
	}
}

func TestBuildIncludesWorldObjectMeshesTransformedByPlacement(t *testing.T) {
	m := worldmap.NewMap("Azeroth", false)
	tile := worldmap.NewTile(0, 0)

	w := &worldmap.WorldObject{ID: 9}
	w.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	m.EnsureWorldObject(9, func() (*worldmap.WorldObject, error) { return w, nil })

	placement := &worldmap.Placement{
		UniqueID: 9,
		Position: d3.Vec3{100, 100, 0},
		Scale:    1,
		Bounds:   tile.Bounds,
	}
	tile.WorldObjectRefs[9] = placement
	tile.Chunks[0][0].WorldObjects[9] = struct{}{}
	m.SetTile(tile)

	soup := Build(m, tile, Options{})

	found := false
	for i := 0; i < int(soup.VertCount()); i++ {
		if soup.Verts[i*3] == 100 && soup.Verts[i*3+1] == 100 {
			found = true
		}
	}
	assert.True(t, found, "expected a WorldObject vertex translated to (100,100,...)")
}

func TestBuildTagsDoodadGeometryWithAreaDoodad(t *testing.T) {
	m := worldmap.NewMap("Azeroth", false)
	tile := worldmap.NewTile(0, 0)

	w := &worldmap.WorldObject{ID: 9}
	w.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	w.DoodadMesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{2, 0, 0}, [3]float32{0, 2, 0})
	m.EnsureWorldObject(9, func() (*worldmap.WorldObject, error) { return w, nil })
	tile.WorldObjectRefs[9] = &worldmap.Placement{UniqueID: 9, Scale: 1, Bounds: tile.Bounds}
	tile.Chunks[0][0].WorldObjects[9] = struct{}{}

	d := &worldmap.Doodad{ID: 1}
	d.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{3, 0, 0}, [3]float32{0, 3, 0})
	m.EnsureDoodad(1, func() (*worldmap.Doodad, error) { return d, nil })
	tile.DoodadRefs[1] = &worldmap.Placement{UniqueID: 1, Scale: 1, Bounds: tile.Bounds}
	tile.Chunks[0][0].Doodads[1] = struct{}{}

	m.SetTile(tile)

	soup := Build(m, tile, Options{})

	counts := map[AreaFlag]int{}
	for _, a := range soup.Areas {
		counts[a]++
	}
	terrainTris := 4 * worldmap.QuadsPerChunkSide * worldmap.QuadsPerChunkSide * worldmap.ChunksPerTile * worldmap.ChunksPerTile
	assert.Equal(t, terrainTris+1, counts[AreaGround], "only the terrain and the WorldObject's structural triangle should be AreaGround")
	assert.Equal(t, 2, counts[AreaDoodad], "the WorldObject's embedded doodad mesh and the standalone Doodad should both be AreaDoodad")
}

func TestBuildGlobalAssemblesAllThreeMeshesWithExpectedAreas(t *testing.T) {
	w := &worldmap.WorldObject{}
	w.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	w.LiquidMesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{2, 0, 0}, [3]float32{0, 2, 0})
	w.DoodadMesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{3, 0, 0}, [3]float32{0, 3, 0})

	soup := BuildGlobal(w)
	assert.Equal(t, int32(3), soup.TriCount())
	assert.Equal(t, []AreaFlag{AreaGround, AreaWater, AreaDoodad}, soup.Areas)
}

func TestAppendMeshDropsDegenerateTriangles(t *testing.T) {
	var soup Soup
	m := worldmap.Mesh{}
	// a zero-area triangle (all verts colinear/identical)
	m.AppendTriangle([3]float32{0, 0, 0}, [3]float32{0, 0, 0}, [3]float32{0, 0, 0})
	m.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})

	soup.appendMesh(m, AreaGround)
	assert.Equal(t, int32(1), soup.TriCount())
}
