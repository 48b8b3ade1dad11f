// Package m2 decodes doodad files: the small static meshes placed
// thousands of times per map (trees, rocks, fences) and referenced by
// UniqueId from a tile's MDDF list. Only the collision geometry is
// decoded — render-only detail (bones, animations, textures) plays no
// part in pathfinding and is never read.
package m2

import (
	"github.com/worldnav/worldnav/chunked"
	"github.com/worldnav/worldnav/resultcode"
)

var (
	tagMVER = chunked.NewTag("MVER")
	tagMD2V = chunked.NewTag("MD2V") // collision vertices
	tagMD2I = chunked.NewTag("MD2I") // collision triangle indices
	tagMD2B = chunked.NewTag("MD2B") // bounding Z range
)

// Parsed is a doodad's local-space collision mesh.
type Parsed struct {
	Vertices  [][3]float32
	Triangles [][3]uint32
	ZMin, ZMax float32
}

// Parse decodes a doodad file's collision geometry.
func Parse(data []byte) (*Parsed, error) {
	p := &Parsed{}
	r := chunked.NewReader(data)

	err := r.Chunks(func(c chunked.Chunk) error {
		switch c.Tag {
		case tagMVER:
			return nil
		case tagMD2V:
			for c.R.Len() >= 12 {
				v, err := c.R.Vec3()
				if err != nil {
					return resultcode.ErrTruncated
				}
				p.Vertices = append(p.Vertices, v)
			}
			return nil
		case tagMD2I:
			for c.R.Len() >= 12 {
				a, err := c.R.U32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				b, err := c.R.U32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				cc, err := c.R.U32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				p.Triangles = append(p.Triangles, [3]uint32{a, b, cc})
			}
			return nil
		case tagMD2B:
			zmin, err := c.R.F32()
			if err != nil {
				return resultcode.ErrTruncated
			}
			zmax, err := c.R.F32()
			if err != nil {
				return resultcode.ErrTruncated
			}
			p.ZMin, p.ZMax = zmin, zmax
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
