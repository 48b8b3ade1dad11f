// Package navgen runs one tile's geometry soup through recast/detour and
// returns the serialized per-tile navmesh blob navfile stores on disk.
//
// recast and detour both work in a Y-up convention (height on the Y axis);
// this world's native data is Z-up (height on Z). meshbuild and worldmap
// never know about this — the swap, and the triangle-winding flip it
// forces, happen only here, at the one point that calls into recast.
package navgen

import (
	"fmt"

	"github.com/arl/go-detour/detour"
	"github.com/arl/go-detour/recast"
	"github.com/arl/go-detour/sample"

	"github.com/worldnav/worldnav/meshbuild"
)

// toRecastAxes swaps a Z-up (x, y, z-height) vertex into recast's Y-up
// (x, z-depth, y-height) convention.
func toRecastAxes(verts []float32) []float32 {
	out := make([]float32, len(verts))
	for i := 0; i < len(verts); i += 3 {
		out[i+0] = verts[i+0]
		out[i+1] = verts[i+2]
		out[i+2] = verts[i+1]
	}
	return out
}

// flipWinding swaps the second and third index of every triangle: the
// axis swap above mirrors the geometry, which reverses every triangle's
// facing unless its winding is flipped to compensate.
func flipWinding(tris []int32) []int32 {
	out := make([]int32, len(tris))
	copy(out, tris)
	for i := 0; i+2 < len(out); i += 3 {
		out[i+1], out[i+2] = out[i+2], out[i+1]
	}
	return out
}

func areaFlagToPolyArea(a meshbuild.AreaFlag) uint8 {
	switch a {
	case meshbuild.AreaWater, meshbuild.AreaLava:
		return sample.PolyAreaWater
	case meshbuild.AreaDoodad:
		// PolyAreaGrass is otherwise unused by this pipeline; borrowed here
		// purely as a distinct area id so doodad-origin polys can be given
		// their own PolyFlags bit below, independent of PolyAreaGround.
		return sample.PolyAreaGrass
	default:
		return sample.PolyAreaGround
	}
}

// Result is one tile's finished navmesh data, ready for navfile to wrap in
// a header and write to disk.
type Result struct {
	Data  []byte
	BMin  [3]float32
	BMax  [3]float32
	Polys int32
	Verts int32
}

// Build runs the full recast pipeline over soup and returns the serialized
// detour tile data for (tileX, tileY). The build bounds are computed here
// from soup's vertices after the Y-up swap (recast.CalcBounds).
func Build(soup meshbuild.Soup, tileX, tileY int32, settings Settings) (*Result, error) {
	if soup.TriCount() == 0 {
		return nil, fmt.Errorf("navgen: empty soup for tile (%d,%d)", tileX, tileY)
	}

	verts := toRecastAxes(soup.Verts)
	tris := flipWinding(soup.Triangles)
	nverts := soup.VertCount()
	ntris := soup.TriCount()

	var bmin, bmax [3]float32
	recast.CalcBounds(verts, nverts, bmin[:], bmax[:])

	ctx := recast.NewBuildContext(false)
	cfg := settings.toRecastConfig(bmin, bmax)

	solid := recast.NewHeightfield()
	if !solid.Create(nil, cfg.Width, cfg.Height, cfg.BMin[:], cfg.BMax[:], cfg.Cs, cfg.Ch) {
		return nil, fmt.Errorf("navgen: could not create heightfield for tile (%d,%d)", tileX, tileY)
	}

	triAreas := make([]uint8, ntris)
	recast.MarkWalkableTriangles(ctx, cfg.WalkableSlopeAngle, verts, nverts, tris, ntris, triAreas)
	// MarkWalkableTriangles only distinguishes walkable ground from
	// unwalkable-by-slope; stamp the soup's own water/lava classification
	// over it for triangles that cleared the slope test, so it survives
	// rasterization into the compact heightfield and out the other end
	// on pmesh.Areas.
	for i, a := range soup.Areas {
		if triAreas[i] == recast.RC_NULL_AREA {
			continue
		}
		triAreas[i] = areaFlagToPolyArea(a)
	}
	if !recast.RasterizeTriangles(ctx, verts, nverts, tris, triAreas, ntris, solid, cfg.WalkableClimb) {
		return nil, fmt.Errorf("navgen: rasterization failed for tile (%d,%d)", tileX, tileY)
	}

	recast.FilterLowHangingWalkableObstacles(ctx, cfg.WalkableClimb, solid)
	recast.FilterLedgeSpans(ctx, cfg.WalkableHeight, cfg.WalkableClimb, solid)
	recast.FilterWalkableLowHeightSpans(ctx, cfg.WalkableHeight, solid)

	chf := &recast.CompactHeightfield{}
	if !recast.BuildCompactHeightfield(ctx, cfg.WalkableHeight, cfg.WalkableClimb, solid, chf) {
		return nil, fmt.Errorf("navgen: could not build compact heightfield for tile (%d,%d)", tileX, tileY)
	}
	if !recast.ErodeWalkableArea(ctx, cfg.WalkableRadius, chf) {
		return nil, fmt.Errorf("navgen: erosion failed for tile (%d,%d)", tileX, tileY)
	}

	switch partitionType {
	case sample.PartitionMonotone:
		if !recast.BuildRegionsMonotone(ctx, chf, cfg.BorderSize, cfg.MinRegionArea, cfg.MergeRegionArea) {
			return nil, fmt.Errorf("navgen: region build failed for tile (%d,%d)", tileX, tileY)
		}
	default:
		// Watershed and layer partitioning both need recast helpers
		// (BuildDistanceField, layer regions) this pinned go-detour build
		// doesn't export; sample/tilemesh's own builder leaves those
		// branches commented out for the same reason, so monotone is the
		// only partitioner this pipeline can actually run.
		return nil, fmt.Errorf("navgen: unsupported partition type %d", partitionType)
	}

	cset := &recast.ContourSet{}
	if !recast.BuildContours(ctx, chf, cfg.MaxSimplificationError, cfg.MaxEdgeLen, cset, recast.ContourTessWallEdges) {
		return nil, fmt.Errorf("navgen: contour build failed for tile (%d,%d)", tileX, tileY)
	}

	pmesh, ok := recast.BuildPolyMesh(ctx, cset, cfg.MaxVertsPerPoly)
	if !ok {
		return nil, fmt.Errorf("navgen: poly mesh build failed for tile (%d,%d)", tileX, tileY)
	}
	dmesh, ok := recast.BuildPolyMeshDetail(ctx, pmesh, chf, cfg.DetailSampleDist, cfg.DetailSampleMaxError)
	if !ok {
		return nil, fmt.Errorf("navgen: detail mesh build failed for tile (%d,%d)", tileX, tileY)
	}

	if pmesh.NVerts >= 0xffff {
		return nil, fmt.Errorf("navgen: tile (%d,%d) exceeds 0xffff vertices", tileX, tileY)
	}

	// pmesh.Areas already carries the soup's water/lava classification,
	// stamped onto triAreas before rasterization; RC_WALKABLE_AREA only
	// turns up here for ground that never got re-stamped (shouldn't
	// happen given every soup triangle has an AreaFlag, but falls back
	// to ground rather than staying unclassified).
	for i := int32(0); i < pmesh.NPolys; i++ {
		if pmesh.Areas[i] == recast.RC_WALKABLE_AREA {
			pmesh.Areas[i] = sample.PolyAreaGround
		}
		switch pmesh.Areas[i] {
		case sample.PolyAreaGround:
			pmesh.Flags[i] = sample.PolyFlagsWalk
		case sample.PolyAreaWater:
			pmesh.Flags[i] = sample.PolyFlagsSwim
		case sample.PolyAreaGrass:
			// Doodad-origin geometry (see areaFlagToPolyArea): walkable by
			// default, but carries PolyFlagsDoor as a marker bit so
			// query.LineOfSight can exclude these polys at query time
			// without a separate navmesh build (its includeDoodads=true
			// case sets PolyFlagsDoor in the filter's exclude flags).
			pmesh.Flags[i] = sample.PolyFlagsWalk | sample.PolyFlagsDoor
		default:
			pmesh.Flags[i] = sample.PolyFlagsWalk
		}
	}

	var params detour.NavMeshCreateParams
	params.Verts = pmesh.Verts
	params.VertCount = pmesh.NVerts
	params.Polys = pmesh.Polys
	params.PolyAreas = pmesh.Areas
	params.PolyFlags = pmesh.Flags
	params.PolyCount = pmesh.NPolys
	params.Nvp = pmesh.Nvp
	params.DetailMeshes = dmesh.Meshes
	params.DetailVerts = dmesh.Verts
	params.DetailVertsCount = dmesh.NVerts
	params.DetailTris = dmesh.Tris
	params.DetailTriCount = dmesh.NTris
	params.WalkableHeight = settings.AgentHeight
	params.WalkableRadius = settings.AgentRadius
	params.WalkableClimb = settings.AgentMaxClimb
	params.TileX = tileX
	params.TileY = tileY
	params.TileLayer = 0
	copy(params.BMin[:], pmesh.BMin[:])
	copy(params.BMax[:], pmesh.BMax[:])
	params.Cs = cfg.Cs
	params.Ch = cfg.Ch
	params.BuildBvTree = true

	data, err := detour.CreateNavMeshData(&params)
	if err != nil {
		return nil, fmt.Errorf("navgen: could not serialize navmesh for tile (%d,%d): %w", tileX, tileY, err)
	}

	return &Result{
		Data:  data,
		BMin:  pmesh.BMin,
		BMax:  pmesh.BMax,
		Polys: pmesh.NPolys,
		Verts: pmesh.NVerts,
	}, nil
}
