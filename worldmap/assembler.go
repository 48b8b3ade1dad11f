package worldmap

import (
	"fmt"
	"io"
	"strings"

	"github.com/arl/gogeo/f32/d3"

	"github.com/worldnav/worldnav/blob"
	"github.com/worldnav/worldnav/format/adt"
	"github.com/worldnav/worldnav/format/area"
	"github.com/worldnav/worldnav/format/m2"
	"github.com/worldnav/worldnav/format/wmo"
	"github.com/worldnav/worldnav/resultcode"
)

// Assembler turns parsed format files into Tiles and shared WorldObjects,
// resolving cross-tile references through a Map's dedup index. It is
// stateless beyond its Provider and area table, so one Assembler can
// safely serve every worker building the same Map concurrently.
type Assembler struct {
	Provider  blob.Provider
	AreaTable *area.Table
	MapName   string
	Log       Logger
}

// Logger receives non-fatal diagnostics surfaced during assembly (both
// liquid forms present, a missing referenced file, and so on). Callers
// pass a *buildlog.Logger, or nil to discard.
type Logger interface {
	Warningf(format string, args ...interface{})
}

// NewAssembler builds an Assembler reading tile/object files from
// provider, with an optional area table (nil is valid, see format/area).
func NewAssembler(provider blob.Provider, areaTable *area.Table, mapName string, log Logger) *Assembler {
	return &Assembler{Provider: provider, AreaTable: areaTable, MapName: mapName, Log: log}
}

func (a *Assembler) warnf(format string, args ...interface{}) {
	if a.Log != nil {
		a.Log.Warningf(format, args...)
	}
}

func (a *Assembler) tileFileName(x, y int) string {
	return fmt.Sprintf("%s_%d_%d.adt", a.MapName, x, y)
}

func (a *Assembler) readAll(name string) ([]byte, error) {
	b, err := a.Provider.Open(name)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	data, err := io.ReadAll(b)
	if err != nil {
		return nil, resultcode.Wrap(err, "read "+name)
	}
	return data, nil
}

// AssembleTile reads tile (x,y)'s terrain file and every WorldObject and
// Doodad it references, populating a new Tile and registering newly-seen
// shared objects in m's dedup index. Objects already resolved by another
// worker (or concurrently being resolved) are waited on rather than
// re-parsed, per the shared-object load protocol (§4.5, scenario S4).
func (a *Assembler) AssembleTile(m *Map, x, y int) (*Tile, error) {
	if !InRange(x, y) {
		return nil, resultcode.ErrOutOfRange
	}
	data, err := a.readAll(a.tileFileName(x, y))
	if err != nil {
		return nil, err
	}
	parsed, err := adt.Parse(data)
	if err != nil && !adt.IsBothLiquidFormsWarning(err) {
		return nil, err
	}
	if err != nil {
		a.warnf("tile (%d,%d): %v", x, y, err)
	}

	t := NewTile(x, y)
	a.fillChunks(t, parsed)

	a.resolveWorldObjects(m, t, parsed)
	a.resolveDoodads(m, t, parsed)
	return t, nil
}

// AssembleGlobal loads a global map's single WorldObject and stores it on
// m. Valid only for maps constructed with isGlobal=true.
func (a *Assembler) AssembleGlobal(m *Map, wmoName string) error {
	if !m.IsGlobal() {
		return resultcode.ErrOutOfRange
	}
	w, err := a.loadWorldObject(wmoName)
	if err != nil {
		return err
	}
	m.SetGlobalWorldObject(w)
	return nil
}

func (a *Assembler) fillChunks(t *Tile, parsed *adt.Parsed) {
	for cy := 0; cy < ChunksPerTile; cy++ {
		for cx := 0; cx < ChunksPerTile; cx++ {
			src := &parsed.Chunks[cy][cx]
			c := t.Chunks[cy][cx]
			c.Heights = src.Heights
			for i, n := range src.Normals {
				c.Normals[i] = d3.Vec3{n[0], n[1], n[2]}
			}
			c.HoleMask = src.HoleMask
			_, resolvedArea := a.AreaTable.Resolve(src.AreaID)
			c.AreaID = resolvedArea

			zmin, zmax := heightExtent(src.Heights[:])
			t.GrowZ(zmin, zmax)

			if src.Liquid != nil {
				c.HasLiquid = true
				c.LiquidLegacy = src.LiquidLegacy
				c.Liquid = buildLiquidLayer(t.X, t.Y, cx, cy, src.Liquid)
				t.GrowZ(c.Liquid.MinZ, c.Liquid.MaxZ)
			}
		}
	}
}

func heightExtent(h []float32) (min, max float32) {
	min, max = h[0], h[0]
	for _, v := range h[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func buildLiquidLayer(tileX, tileY, cx, cy int, src *adt.LiquidData) LiquidLayer {
	cb := ChunkBounds(tileX, tileY, cx, cy)
	step := ChunkSize / QuadsPerChunkSide

	var mesh Mesh
	minZ, maxZ := src.Heights[0][0], src.Heights[0][0]
	for qy := 0; qy < QuadsPerChunkSide; qy++ {
		for qx := 0; qx < QuadsPerChunkSide; qx++ {
			if !src.Render[qy][qx] {
				continue
			}
			tl := [3]float32{cb.Min[0] + float32(qx)*step, cb.Min[1] + float32(qy)*step, src.Heights[qy][qx]}
			tr := [3]float32{cb.Min[0] + float32(qx+1)*step, cb.Min[1] + float32(qy)*step, src.Heights[qy][qx+1]}
			bl := [3]float32{cb.Min[0] + float32(qx)*step, cb.Min[1] + float32(qy+1)*step, src.Heights[qy+1][qx]}
			br := [3]float32{cb.Min[0] + float32(qx+1)*step, cb.Min[1] + float32(qy+1)*step, src.Heights[qy+1][qx+1]}
			mesh.AppendTriangle(tl, tr, bl)
			mesh.AppendTriangle(tr, br, bl)
			for _, v := range [4][3]float32{tl, tr, bl, br} {
				if v[2] < minZ {
					minZ = v[2]
				}
				if v[2] > maxZ {
					maxZ = v[2]
				}
			}
		}
	}
	return LiquidLayer{
		Type: liquidTypeFrom(src.Type),
		Mesh: mesh,
		MinZ: minZ,
		MaxZ: maxZ,
	}
}

func liquidTypeFrom(raw uint8) LiquidType {
	switch raw {
	case 1:
		return LiquidOcean
	case 2:
		return LiquidMagma
	case 3:
		return LiquidSlime
	default:
		return LiquidWater
	}
}

func (a *Assembler) resolveWorldObjects(m *Map, t *Tile, parsed *adt.Parsed) {
	for _, pl := range parsed.WorldObjectPlacements {
		name := nameAt(parsed.WorldObjectNames, pl.NameID)
		id := UniqueID(pl.UniqueID)
		wobj, err := m.EnsureWorldObject(id, func() (*WorldObject, error) {
			w, err := a.loadWorldObject(name)
			if err != nil {
				return nil, err
			}
			w.ID = id
			return w, nil
		})
		if err != nil {
			a.warnf("tile (%d,%d): world object %q (id %d): %v", t.X, t.Y, name, id, err)
			continue
		}
		placement := &Placement{
			UniqueID: id,
			NameID:   pl.NameID,
			Position: d3.Vec3{pl.Position[0], pl.Position[1], pl.Position[2]},
			Rotation: d3.Vec3{pl.Rotation[0], pl.Rotation[1], pl.Rotation[2]},
			Scale:    pl.Scale,
			Bounds:   rectFromMinMax(pl.BoundsMin, pl.BoundsMax),
		}
		t.WorldObjectRefs[id] = placement
		assignTransformedVertices(t, id, placement, wobj.Mesh, true)
		assignTransformedVertices(t, id, placement, wobj.LiquidMesh, true)
		assignTransformedVertices(t, id, placement, wobj.DoodadMesh, true)
	}
}

func (a *Assembler) resolveDoodads(m *Map, t *Tile, parsed *adt.Parsed) {
	for _, pl := range parsed.DoodadPlacements {
		name := nameAt(parsed.DoodadNames, pl.NameID)
		id := UniqueID(pl.UniqueID)
		d, err := m.EnsureDoodad(id, func() (*Doodad, error) {
			d, err := a.loadDoodad(name)
			if err != nil {
				return nil, err
			}
			d.ID = id
			return d, nil
		})
		if err != nil {
			a.warnf("tile (%d,%d): doodad %q (id %d): %v", t.X, t.Y, name, id, err)
			continue
		}
		placement := &Placement{
			UniqueID: id,
			NameID:   pl.NameID,
			Position: d3.Vec3{pl.Position[0], pl.Position[1], pl.Position[2]},
			Rotation: d3.Vec3{pl.Rotation[0], pl.Rotation[1], pl.Rotation[2]},
			Scale:    pl.Scale,
			Bounds:   rectFromMinMax(pl.BoundsMin, pl.BoundsMax),
		}
		t.DoodadRefs[id] = placement
		assignTransformedVertices(t, id, placement, d.Mesh, false)
	}
}

// assignTransformedVertices registers id with every chunk touched by one of
// mesh's vertices, after transforming each local-space vertex through
// placement into world space. This only decides spatial membership
// (invariant 1); the shared object's mesh itself stays untransformed and
// is transformed again, independently, whenever meshbuild assembles a
// tile's final geometry.
func assignTransformedVertices(t *Tile, id UniqueID, placement *Placement, mesh Mesh, isWorldObject bool) {
	for i := 0; i < mesh.VertCount(); i++ {
		local := mesh.Vertex(i)
		world := placement.Transform(d3.Vec3{local[0], local[1], local[2]})
		if isWorldObject {
			t.AssignWorldObjectVertex(id, world[0], world[1])
		} else {
			t.AssignDoodadVertex(id, world[0], world[1])
		}
	}
}

func nameAt(names []string, id uint32) string {
	if int(id) < len(names) {
		return names[id]
	}
	return ""
}

func rectFromMinMax(min, max [3]float32) d3.Rectangle {
	return d3.Rectangle{
		Min: d3.Vec3{min[0], min[1], min[2]},
		Max: d3.Vec3{max[0], max[1], max[2]},
	}
}

// groupFileName derives a WorldObject group file's logical name from its
// root file name and group index, following the source format's
// "<root>_NNN.wmo" convention (zero-padded to 3 digits).
func groupFileName(rootName string, idx int) string {
	base := strings.TrimSuffix(rootName, ".wmo")
	return fmt.Sprintf("%s_%03d.wmo", base, idx)
}

func (a *Assembler) loadWorldObject(name string) (*WorldObject, error) {
	if name == "" {
		return nil, resultcode.ErrNotFound
	}
	data, err := a.readAll(name)
	if err != nil {
		return nil, err
	}
	root, err := wmo.ParseRoot(data)
	if err != nil {
		return nil, err
	}

	w := &WorldObject{}
	for i := 0; i < root.GroupCount; i++ {
		gdata, err := a.readAll(groupFileName(name, i))
		if err != nil {
			a.warnf("world object %q: group %d: %v", name, i, err)
			continue
		}
		group, err := wmo.ParseGroup(gdata)
		if err != nil {
			a.warnf("world object %q: group %d: %v", name, i, err)
			continue
		}
		appendWMOTriangles(&w.Mesh, group.Vertices, group.Triangles)
		if group.Liquid != nil {
			appendWMOTriangles(&w.LiquidMesh, group.Liquid.Vertices, group.Liquid.Triangles)
		}
	}

	for _, d := range root.Doodads {
		doodad, err := a.loadDoodad(d.Name)
		if err != nil {
			a.warnf("world object %q: embedded doodad %q: %v", name, d.Name, err)
			continue
		}
		placement := &Placement{
			Position: d3.Vec3{d.Position[0], d.Position[1], d.Position[2]},
			Scale:    d.Scale,
		}
		for i := 0; i < doodad.Mesh.VertCount(); i++ {
			local := doodad.Mesh.Vertex(i)
			world := placement.Transform(d3.Vec3{local[0], local[1], local[2]})
			w.DoodadMesh.Verts = append(w.DoodadMesh.Verts, world[0], world[1], world[2])
		}
		base := uint32(w.DoodadMesh.VertCount() - doodad.Mesh.VertCount())
		for _, idx := range doodad.Mesh.Indices {
			w.DoodadMesh.Indices = append(w.DoodadMesh.Indices, base+idx)
		}
	}
	return w, nil
}

func appendWMOTriangles(mesh *Mesh, verts [][3]float32, tris []wmo.Triangle) {
	base := uint32(mesh.VertCount())
	for _, v := range verts {
		mesh.Verts = append(mesh.Verts, v[0], v[1], v[2])
	}
	for _, tr := range tris {
		mesh.Indices = append(mesh.Indices, base+tr.A, base+tr.B, base+tr.C)
	}
}

func (a *Assembler) loadDoodad(name string) (*Doodad, error) {
	if name == "" {
		return nil, resultcode.ErrNotFound
	}
	data, err := a.readAll(name)
	if err != nil {
		return nil, err
	}
	parsed, err := m2.Parse(data)
	if err != nil {
		return nil, err
	}
	d := &Doodad{ZMin: parsed.ZMin, ZMax: parsed.ZMax}
	for _, v := range parsed.Vertices {
		d.Mesh.Verts = append(d.Mesh.Verts, v[0], v[1], v[2])
	}
	for _, tri := range parsed.Triangles {
		d.Mesh.Indices = append(d.Mesh.Indices, tri[0], tri[1], tri[2])
	}
	return d, nil
}
