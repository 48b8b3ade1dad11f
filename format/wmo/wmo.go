// Package wmo decodes WorldObject files: a root file describing the
// object's group files and embedded doodad set, and one group file per
// group holding the actual triangle and liquid geometry.
package wmo

import (
	"github.com/worldnav/worldnav/chunked"
	"github.com/worldnav/worldnav/resultcode"
)

var (
	tagMVER = chunked.NewTag("MVER")
	tagMOHD = chunked.NewTag("MOHD")
	tagMOGN = chunked.NewTag("MOGN")
	tagMODN = chunked.NewTag("MODN")
	tagMODD = chunked.NewTag("MODD")

	tagMOGP = chunked.NewTag("MOGP")
	tagMOVT = chunked.NewTag("MOVT")
	tagMOVI = chunked.NewTag("MOVI")
	tagMOPY = chunked.NewTag("MOPY")
	tagMLIQ = chunked.NewTag("MLIQ")
)

// Doodad is one doodad placed relative to the WorldObject's own local
// space, resolved by name rather than by the tile-level UniqueId scheme
// used for MDDF doodads.
type Doodad struct {
	Name     string
	Position [3]float32
	Rotation [4]float32 // quaternion x,y,z,w
	Scale    float32
}

// Root is the decoded content of a WorldObject's root file.
type Root struct {
	GroupCount int
	GroupNames []string // present only if MOGN encodes per-group labels
	Doodads    []Doodad
}

// ParseRoot decodes a root WMO file.
func ParseRoot(data []byte) (*Root, error) {
	r := &Root{}
	names, err := readStringTable(data, tagMODN)
	if err != nil {
		return nil, err
	}

	chReader := chunked.NewReader(data)
	err = chReader.Chunks(func(c chunked.Chunk) error {
		switch c.Tag {
		case tagMVER:
			return nil
		case tagMOHD:
			n, err := c.R.U32()
			if err != nil {
				return resultcode.ErrTruncated
			}
			r.GroupCount = int(n)
			return nil
		case tagMOGN:
			groupNames, err := splitNulTerminated(c.R)
			if err != nil {
				return err
			}
			r.GroupNames = groupNames
			return nil
		case tagMODD:
			for c.R.Len() > 0 {
				nameOff, err := c.R.U32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				pos, err := c.R.Vec3()
				if err != nil {
					return resultcode.ErrTruncated
				}
				var rot [4]float32
				for i := range rot {
					if rot[i], err = c.R.F32(); err != nil {
						return resultcode.ErrTruncated
					}
				}
				scale, err := c.R.F32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				if _, err := c.R.U32(); err != nil { // color, unused
					return resultcode.ErrTruncated
				}
				r.Doodads = append(r.Doodads, Doodad{
					Name:     nameAt(names, nameOff),
					Position: pos,
					Rotation: rot,
					Scale:    scale,
				})
			}
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Triangle is one group mesh face, carrying the material flags used to
// classify its walkability at mesh-build time.
type Triangle struct {
	A, B, C uint32
	Flags   uint8
}

// LiquidMesh is the optional liquid surface embedded in a group file.
type LiquidMesh struct {
	Vertices  [][3]float32
	Triangles []Triangle
	Type      uint8
}

// Group is the decoded content of one WorldObject group file.
type Group struct {
	Vertices  [][3]float32
	Triangles []Triangle
	Liquid    *LiquidMesh
}

// ParseGroup decodes a single group file.
func ParseGroup(data []byte) (*Group, error) {
	g := &Group{}
	r := chunked.NewReader(data)

	err := r.Chunks(func(c chunked.Chunk) error {
		if c.Tag != tagMOGP {
			return nil
		}
		return parseGroupBody(c.R, g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func parseGroupBody(r *chunked.Reader, g *Group) error {
	var flags []uint8
	return r.Chunks(func(c chunked.Chunk) error {
		switch c.Tag {
		case tagMOVT:
			for c.R.Len() >= 12 {
				v, err := c.R.Vec3()
				if err != nil {
					return resultcode.ErrTruncated
				}
				g.Vertices = append(g.Vertices, v)
			}
			return nil
		case tagMOPY:
			for c.R.Len() >= 2 {
				f, err := c.R.U8()
				if err != nil {
					return resultcode.ErrTruncated
				}
				if _, err := c.R.U8(); err != nil { // material id, unused
					return resultcode.ErrTruncated
				}
				flags = append(flags, f)
			}
			return nil
		case tagMOVI:
			idx := 0
			for c.R.Len() >= 6 {
				a, err := c.R.U16()
				if err != nil {
					return resultcode.ErrTruncated
				}
				b, err := c.R.U16()
				if err != nil {
					return resultcode.ErrTruncated
				}
				cc, err := c.R.U16()
				if err != nil {
					return resultcode.ErrTruncated
				}
				var flag uint8
				if idx < len(flags) {
					flag = flags[idx]
				}
				g.Triangles = append(g.Triangles, Triangle{
					A: uint32(a), B: uint32(b), C: uint32(cc), Flags: flag,
				})
				idx++
			}
			return nil
		case tagMLIQ:
			liq, err := parseLiquid(c.R)
			if err != nil {
				return err
			}
			g.Liquid = liq
			return nil
		default:
			return nil
		}
	})
}

func parseLiquid(r *chunked.Reader) (*LiquidMesh, error) {
	width, err := r.U32()
	if err != nil {
		return nil, resultcode.ErrTruncated
	}
	height, err := r.U32()
	if err != nil {
		return nil, resultcode.ErrTruncated
	}
	origin, err := r.Vec3()
	if err != nil {
		return nil, resultcode.ErrTruncated
	}
	typ, err := r.U8()
	if err != nil {
		return nil, resultcode.ErrTruncated
	}

	liq := &LiquidMesh{Type: typ}
	verts := make([][3]float32, 0, (width+1)*(height+1))
	for y := uint32(0); y <= height; y++ {
		for x := uint32(0); x <= width; x++ {
			z, err := r.F32()
			if err != nil {
				return nil, resultcode.ErrTruncated
			}
			verts = append(verts, [3]float32{
				origin[0] + float32(x),
				origin[1] + float32(y),
				origin[2] + z,
			})
		}
	}
	liq.Vertices = verts

	stride := width + 1
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			tl := y*stride + x
			tr := tl + 1
			bl := tl + stride
			br := bl + 1
			liq.Triangles = append(liq.Triangles,
				Triangle{A: tl, B: tr, C: bl},
				Triangle{A: tr, B: br, C: bl},
			)
		}
	}
	return liq, nil
}

func readStringTable(data []byte, tag chunked.Tag) ([]string, error) {
	r := chunked.NewReader(data)
	var names []string
	err := r.Chunks(func(c chunked.Chunk) error {
		if c.Tag != tag {
			return nil
		}
		var err error
		names, err = splitNulTerminated(c.R)
		return err
	})
	return names, err
}

// splitNulTerminated splits a chunk payload into NUL-terminated strings, in
// block order; nameAt maps an MODD-style byte offset back onto them.
func splitNulTerminated(r *chunked.Reader) ([]string, error) {
	raw, err := r.Bytes(r.Len())
	if err != nil {
		return nil, err
	}
	var out []string
	start := 0
	for i, b := range raw {
		if b == 0 {
			out = append(out, string(raw[start:i]))
			start = i + 1
		}
	}
	return out, nil
}

// nameAt returns the name starting at MODD-reported byte offset off within
// the NUL-terminated name block, falling back to an empty string if no name
// starts there rather than failing the whole parse: a missing doodad name
// degrades the placement, it does not corrupt the object's own geometry.
func nameAt(names []string, off uint32) string {
	var at uint32
	for _, n := range names {
		if at == off {
			return n
		}
		at += uint32(len(n)) + 1
	}
	return ""
}
