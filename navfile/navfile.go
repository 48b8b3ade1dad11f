// Package navfile reads and writes the three artifact kinds the build
// pipeline produces and the runtime query engine consumes: a per-tile
// navmesh file, a per-WorldObject bounding-volume-hierarchy file, and a
// per-map index tying WorldObject ids to their BVH file offsets.
//
// All three formats follow the same little-endian, magic-and-version
// convention the rest of this repo uses for its own wire data (see
// chunked.Reader/Writer), rather than reaching for a general-purpose
// serialization library: namigator's own on-disk layout (see
// original_source/pathfind/Source/...) is exactly this shape, a flat
// struct dumped with a stable header.
package navfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/worldnav/worldnav/chunked"
	"github.com/worldnav/worldnav/resultcode"
	"github.com/worldnav/worldnav/worldmap"
)

const (
	navMagic    = "NMMT"
	navVersion  = 1
	bvhMagic    = "NMBV"
	bvhVersion  = 1
	indexMagic  = "NMIX"
	indexVersion = 1
)

// TilePath returns the on-disk path for a built tile's navmesh file.
func TilePath(outDir, mapName string, x, y int) string {
	return filepath.Join(outDir, "Nav", mapName, fmt.Sprintf("%d_%d.nav", x, y))
}

// BVHPath returns the on-disk path for a WorldObject's BVH file.
func BVHPath(outDir string, id worldmap.UniqueID) string {
	return filepath.Join(outDir, "BVH", fmt.Sprintf("%d.bvh", uint32(id)))
}

// IndexPath returns the on-disk path for a map's BVH index file.
func IndexPath(outDir, mapName string) string {
	return filepath.Join(outDir, "BVH", mapName+".idx")
}

// Tile is the decoded content of one <x>_<y>.nav file.
type Tile struct {
	X, Y    int32
	Bounds  [6]float32 // minx,miny,minz, maxx,maxy,maxz
	Mesh    []byte
	AreaIDs [256]uint16 // raw MCNK AreaId, row-major [16][16], for GetZoneAndArea
}

// WriteTile serializes t to path, creating parent directories as needed.
//
// The layout is spec §6's fixed prefix (magic, version, tile_x, tile_y,
// bounds, mesh_size, mesh_bytes) followed by one additive field this repo
// needs that the distilled spec's byte layout omits: the tile's 16x16
// raw AreaId grid, without which GetZoneAndArea would have nothing to
// resolve once the query engine only has the serialized tile and never
// re-parses the source ADT.
func WriteTile(path string, t Tile) error {
	w := chunked.NewWriter()
	w.PutBytes([]byte(navMagic))
	w.PutU32(navVersion)
	w.PutI32(t.X)
	w.PutI32(t.Y)
	for _, f := range t.Bounds {
		w.PutF32(f)
	}
	w.PutU32(uint32(len(t.Mesh)))
	w.PutBytes(t.Mesh)
	for _, id := range t.AreaIDs {
		w.PutU16(id)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return resultcode.Wrap(err, "navfile: mkdir")
	}
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		return resultcode.Wrap(err, "navfile: write tile")
	}
	return nil
}

// ReadTile decodes a previously written <x>_<y>.nav file. An unrecognized
// magic or version is rejected per §8's header-stability invariant.
func ReadTile(data []byte) (*Tile, error) {
	r := chunked.NewReader(data)
	magic, err := r.Bytes(4)
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: tile header")
	}
	if string(magic) != navMagic {
		return nil, resultcode.Wrap(resultcode.ErrCorrupt, "navfile: bad tile magic")
	}
	version, err := r.U32()
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: tile version")
	}
	if version != navVersion {
		return nil, resultcode.Wrap(resultcode.ErrCorrupt, fmt.Sprintf("navfile: unsupported tile version %d", version))
	}

	var t Tile
	if t.X, err = r.I32(); err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: tile x")
	}
	if t.Y, err = r.I32(); err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: tile y")
	}
	for i := range t.Bounds {
		if t.Bounds[i], err = r.F32(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: tile bounds")
		}
	}
	meshSize, err := r.U32()
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: mesh size")
	}
	t.Mesh, err = r.Bytes(int(meshSize))
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: mesh bytes")
	}
	for i := range t.AreaIDs {
		if t.AreaIDs[i], err = r.U16(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: tile area ids")
		}
	}
	return &t, nil
}

// AABBNode is one node of a WorldObject's triangle-index bounding-volume
// tree: a leaf holds one triangle index, an internal node holds two
// children.
type AABBNode struct {
	Min, Max    [3]float32
	Left, Right int32 // -1 for a leaf
	TriIndex    int32 // valid only when Left == -1
}

// BVH is a flattened binary AABB tree over one WorldObject's triangles.
// The build writes it to disk; the runtime query engine does not read
// BVH files.
type BVH struct {
	ID    worldmap.UniqueID
	Nodes []AABBNode
}

// BuildBVH constructs a median-split AABB tree over mesh's triangles.
func BuildBVH(id worldmap.UniqueID, mesh worldmap.Mesh) BVH {
	n := mesh.TriCount()
	if n == 0 {
		return BVH{ID: id}
	}
	type tri struct {
		idx      int32
		min, max [3]float32
		center   [3]float32
	}
	tris := make([]tri, n)
	for i := 0; i < n; i++ {
		a := mesh.Vertex(int(mesh.Indices[i*3]))
		b := mesh.Vertex(int(mesh.Indices[i*3+1]))
		c := mesh.Vertex(int(mesh.Indices[i*3+2]))
		var t tri
		t.idx = int32(i)
		for k := 0; k < 3; k++ {
			t.min[k] = fmin3(a[k], b[k], c[k])
			t.max[k] = fmax3(a[k], b[k], c[k])
			t.center[k] = (t.min[k] + t.max[k]) / 2
		}
		tris[i] = t
	}

	var nodes []AABBNode
	var build func(items []tri) int32
	build = func(items []tri) int32 {
		bmin, bmax := items[0].min, items[0].max
		for _, it := range items[1:] {
			for k := 0; k < 3; k++ {
				if it.min[k] < bmin[k] {
					bmin[k] = it.min[k]
				}
				if it.max[k] > bmax[k] {
					bmax[k] = it.max[k]
				}
			}
		}
		if len(items) == 1 {
			nodes = append(nodes, AABBNode{Min: bmin, Max: bmax, Left: -1, Right: -1, TriIndex: items[0].idx})
			return int32(len(nodes) - 1)
		}

		axis := longestAxis(bmin, bmax)
		sort.Slice(items, func(i, j int) bool { return items[i].center[axis] < items[j].center[axis] })
		mid := len(items) / 2

		self := int32(len(nodes))
		nodes = append(nodes, AABBNode{Min: bmin, Max: bmax})
		left := build(items[:mid])
		right := build(items[mid:])
		nodes[self].Left = left
		nodes[self].Right = right
		return self
	}
	build(tris)
	return BVH{ID: id, Nodes: nodes}
}

func fmin3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func fmax3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func longestAxis(min, max [3]float32) int {
	best, bestLen := 0, max[0]-min[0]
	for k := 1; k < 3; k++ {
		if l := max[k] - min[k]; l > bestLen {
			best, bestLen = k, l
		}
	}
	return best
}

// WriteBVH serializes bvh to path.
func WriteBVH(path string, bvh BVH) error {
	w := chunked.NewWriter()
	w.PutBytes([]byte(bvhMagic))
	w.PutU32(bvhVersion)
	w.PutU32(uint32(bvh.ID))
	w.PutU32(uint32(len(bvh.Nodes)))
	for _, n := range bvh.Nodes {
		w.PutVec3(n.Min)
		w.PutVec3(n.Max)
		w.PutI32(n.Left)
		w.PutI32(n.Right)
		w.PutI32(n.TriIndex)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return resultcode.Wrap(err, "navfile: mkdir")
	}
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		return resultcode.Wrap(err, "navfile: write bvh")
	}
	return nil
}

// ReadBVH decodes a previously written .bvh file.
func ReadBVH(data []byte) (*BVH, error) {
	r := chunked.NewReader(data)
	magic, err := r.Bytes(4)
	if err != nil || string(magic) != bvhMagic {
		return nil, resultcode.Wrap(resultcode.ErrCorrupt, "navfile: bad bvh magic")
	}
	version, err := r.U32()
	if err != nil || version != bvhVersion {
		return nil, resultcode.Wrap(resultcode.ErrCorrupt, "navfile: unsupported bvh version")
	}
	id, err := r.U32()
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh id")
	}
	count, err := r.U32()
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh count")
	}
	bvh := &BVH{ID: worldmap.UniqueID(id), Nodes: make([]AABBNode, count)}
	for i := range bvh.Nodes {
		n := &bvh.Nodes[i]
		if n.Min, err = r.Vec3(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh node min")
		}
		if n.Max, err = r.Vec3(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh node max")
		}
		if n.Left, err = r.I32(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh node left")
		}
		if n.Right, err = r.I32(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh node right")
		}
		if n.TriIndex, err = r.I32(); err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: bvh node tri index")
		}
	}
	return bvh, nil
}

// IndexEntry is one row of a map's BVH index: a WorldObject id and a BVH
// byte offset. The build gives each WorldObject its own .bvh file and
// writes 0 as the offset.
type IndexEntry struct {
	ID        worldmap.UniqueID
	BVHOffset uint64
}

// WriteIndex serializes the map's list of WorldObject ids and their BVH
// offsets to path.
func WriteIndex(path string, entries []IndexEntry) error {
	w := chunked.NewWriter()
	w.PutBytes([]byte(indexMagic))
	w.PutU32(indexVersion)
	w.PutU32(uint32(len(entries)))
	for _, e := range entries {
		w.PutU32(uint32(e.ID))
		w.PutU64(e.BVHOffset)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return resultcode.Wrap(err, "navfile: mkdir")
	}
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		return resultcode.Wrap(err, "navfile: write index")
	}
	return nil
}

// ReadIndex decodes a previously written .idx file.
func ReadIndex(data []byte) ([]IndexEntry, error) {
	r := chunked.NewReader(data)
	magic, err := r.Bytes(4)
	if err != nil || string(magic) != indexMagic {
		return nil, resultcode.Wrap(resultcode.ErrCorrupt, "navfile: bad index magic")
	}
	version, err := r.U32()
	if err != nil || version != indexVersion {
		return nil, resultcode.Wrap(resultcode.ErrCorrupt, "navfile: unsupported index version")
	}
	count, err := r.U32()
	if err != nil {
		return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: index count")
	}
	out := make([]IndexEntry, count)
	for i := range out {
		id, err := r.U32()
		if err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: index entry id")
		}
		off, err := r.U64()
		if err != nil {
			return nil, resultcode.Wrap(resultcode.ErrTruncated, "navfile: index entry offset")
		}
		out[i] = IndexEntry{ID: worldmap.UniqueID(id), BVHOffset: off}
	}
	return out, nil
}
