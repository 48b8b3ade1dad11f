// Package adt decodes a tile's terrain file: the FourCC-chunked container
// that carries height samples, the hole bitmap, surface normals, liquid
// layers (legacy per-chunk or modern consolidated — never both), and the
// tile's lists of WorldObject and Doodad placements.
//
// Parse performs no I/O of its own: callers hand it a blob already opened
// through a blob.Provider, and get back plain data for worldmap's assembler
// to turn into a Tile.
package adt

import (
	"github.com/worldnav/worldnav/chunked"
	"github.com/worldnav/worldnav/resultcode"
)

// Chunk tags, in the FourCC form they appear on the wire.
var (
	tagMVER = chunked.NewTag("MVER")
	tagMCNK = chunked.NewTag("MCNK")
	tagMCVT = chunked.NewTag("MCVT")
	tagMCNR = chunked.NewTag("MCNR")
	tagMCLQ = chunked.NewTag("MCLQ")
	tagMH2O = chunked.NewTag("MH2O")
	tagMWMO = chunked.NewTag("MWMO")
	tagMWID = chunked.NewTag("MWID")
	tagMODF = chunked.NewTag("MODF")
	tagMMDX = chunked.NewTag("MMDX")
	tagMMID = chunked.NewTag("MMID")
	tagMDDF = chunked.NewTag("MDDF")
)

const (
	chunksPerSide = 16
	outerLattice  = 9
	innerLattice  = 8
	heightSamples = outerLattice*outerLattice + innerLattice*innerLattice // 145
	quadsPerSide  = 8
)

// LiquidData is one chunk's liquid layer, in whichever of the two on-disk
// forms produced it.
type LiquidData struct {
	Type    uint8
	Heights [outerLattice][outerLattice]float32
	Render  [quadsPerSide][quadsPerSide]bool
}

// ChunkData is one 1/256th-of-a-tile terrain cell.
type ChunkData struct {
	AreaID   uint16
	Heights  [heightSamples]float32
	Normals  [heightSamples][3]float32
	HoleMask uint64

	Liquid       *LiquidData
	LiquidLegacy bool
}

// Placement is a named, transformed reference to a shared WorldObject or
// Doodad, exactly as recorded in the tile's MODF/MDDF list.
type Placement struct {
	UniqueID   uint32
	NameID     uint32
	Position   [3]float32
	Rotation   [3]float32
	Scale      float32
	BoundsMin  [3]float32
	BoundsMax  [3]float32
}

// Parsed is the full decoded content of one tile file.
type Parsed struct {
	Chunks [chunksPerSide][chunksPerSide]ChunkData

	WorldObjectNames      []string
	WorldObjectPlacements []Placement

	DoodadNames      []string
	DoodadPlacements []Placement
}

// Parse decodes a tile file's full chunk stream. Unknown top-level chunks
// are ignored, per the container contract; chunks may appear in any order.
func Parse(data []byte) (*Parsed, error) {
	p := &Parsed{}
	r := chunked.NewReader(data)

	var (
		haveMH2O bool
		haveMCLQ bool
		mcnkIdx  int
	)

	err := r.Chunks(func(c chunked.Chunk) error {
		switch c.Tag {
		case tagMVER:
			// version chunk: one u32, nothing to validate beyond presence.
			return nil
		case tagMCNK:
			if mcnkIdx >= chunksPerSide*chunksPerSide {
				return resultcode.ErrCorrupt
			}
			cy, cx := mcnkIdx/chunksPerSide, mcnkIdx%chunksPerSide
			mcnkIdx++
			prev, prevLegacy := p.Chunks[cy][cx].Liquid, p.Chunks[cy][cx].LiquidLegacy
			legacy, err := parseMCNK(c.R, &p.Chunks[cy][cx])
			if err != nil {
				return err
			}
			if legacy {
				haveMCLQ = true
				if prev != nil && !prevLegacy {
					// an MH2O layer decoded earlier for this chunk wins
					p.Chunks[cy][cx].Liquid, p.Chunks[cy][cx].LiquidLegacy = prev, false
				}
			}
			return nil
		case tagMH2O:
			haveMH2O = true
			return parseMH2O(c.R, p)
		case tagMWMO:
			names, err := parseStringBlock(c.R)
			if err != nil {
				return err
			}
			p.WorldObjectNames = names
			return nil
		case tagMWID:
			// offsets into MWMO's string block; this repo resolves
			// placements by index into WorldObjectNames directly, so MWID
			// is read only to stay chunk-order agnostic and is otherwise
			// unused.
			_, err := c.R.Bytes(c.R.Len())
			return err
		case tagMODF:
			placements, err := parsePlacements(c.R)
			if err != nil {
				return err
			}
			p.WorldObjectPlacements = placements
			return nil
		case tagMMDX:
			names, err := parseStringBlock(c.R)
			if err != nil {
				return err
			}
			p.DoodadNames = names
			return nil
		case tagMMID:
			_, err := c.R.Bytes(c.R.Len())
			return err
		case tagMDDF:
			placements, err := parsePlacements(c.R)
			if err != nil {
				return err
			}
			p.DoodadPlacements = placements
			return nil
		default:
			// unknown chunk: ignore per §4.2/§6 container contract.
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if haveMH2O && haveMCLQ {
		// documented non-fatal warning per §9: both forms present. A chunk
		// with both keeps its MH2O layer whichever chunk came first; chunks
		// with only one form keep that one. The assembler logs this warning.
		return p, errBothLiquidForms
	}
	return p, nil
}

// errBothLiquidForms is returned alongside a fully usable Parsed value: it
// signals a non-fatal diagnostic, not a parse failure.
var errBothLiquidForms = &bothLiquidFormsWarning{}

type bothLiquidFormsWarning struct{}

func (*bothLiquidFormsWarning) Error() string {
	return "adt: both MCLQ and MH2O present; preferring MH2O"
}

// IsBothLiquidFormsWarning reports whether err is the non-fatal
// both-liquid-forms diagnostic from Parse, as opposed to a real failure.
func IsBothLiquidFormsWarning(err error) bool {
	_, ok := err.(*bothLiquidFormsWarning)
	return ok
}

func parseMCNK(r *chunked.Reader, out *ChunkData) (legacyLiquid bool, err error) {
	areaID, err := r.U32()
	if err != nil {
		return false, resultcode.ErrTruncated
	}
	out.AreaID = uint16(areaID)

	holeMask, err := r.U32()
	if err != nil {
		return false, resultcode.ErrTruncated
	}
	out.HoleMask = uint64(holeMask)

	return parseMCNKSubchunks(r, out)
}

func parseMCNKSubchunks(r *chunked.Reader, out *ChunkData) (legacyLiquid bool, err error) {
	err = r.Chunks(func(c chunked.Chunk) error {
		switch c.Tag {
		case tagMCVT:
			for i := 0; i < heightSamples; i++ {
				h, err := c.R.F32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				out.Heights[i] = h
			}
			return nil
		case tagMCNR:
			for i := 0; i < heightSamples; i++ {
				v, err := c.R.Vec3()
				if err != nil {
					return resultcode.ErrTruncated
				}
				out.Normals[i] = v
			}
			return nil
		case tagMCLQ:
			legacyLiquid = true
			liq := &LiquidData{}
			t, err := c.R.U8()
			if err != nil {
				return resultcode.ErrTruncated
			}
			liq.Type = t
			for y := 0; y < outerLattice; y++ {
				for x := 0; x < outerLattice; x++ {
					h, err := c.R.F32()
					if err != nil {
						return resultcode.ErrTruncated
					}
					liq.Heights[y][x] = h
				}
			}
			for y := 0; y < quadsPerSide; y++ {
				for x := 0; x < quadsPerSide; x++ {
					b, err := c.R.U8()
					if err != nil {
						return resultcode.ErrTruncated
					}
					liq.Render[y][x] = b != 0
				}
			}
			out.Liquid = liq
			out.LiquidLegacy = true
			return nil
		default:
			return nil
		}
	})
	return legacyLiquid, err
}

// parseMH2O decodes the modern consolidated liquid chunk: a sequence of
// per-chunk layer records (chunk x/y, type, height lattice, render mask).
func parseMH2O(r *chunked.Reader, p *Parsed) error {
	count, err := r.U32()
	if err != nil {
		return resultcode.ErrTruncated
	}
	for i := uint32(0); i < count; i++ {
		cx, err := r.U8()
		if err != nil {
			return resultcode.ErrTruncated
		}
		cy, err := r.U8()
		if err != nil {
			return resultcode.ErrTruncated
		}
		if int(cx) >= chunksPerSide || int(cy) >= chunksPerSide {
			return resultcode.ErrCorrupt
		}
		liq := &LiquidData{}
		t, err := r.U8()
		if err != nil {
			return resultcode.ErrTruncated
		}
		liq.Type = t
		for y := 0; y < outerLattice; y++ {
			for x := 0; x < outerLattice; x++ {
				h, err := r.F32()
				if err != nil {
					return resultcode.ErrTruncated
				}
				liq.Heights[y][x] = h
			}
		}
		for y := 0; y < quadsPerSide; y++ {
			for x := 0; x < quadsPerSide; x++ {
				b, err := r.U8()
				if err != nil {
					return resultcode.ErrTruncated
				}
				liq.Render[y][x] = b != 0
			}
		}
		p.Chunks[cy][cx].Liquid = liq
		p.Chunks[cy][cx].LiquidLegacy = false
	}
	return nil
}

func parseStringBlock(r *chunked.Reader) ([]string, error) {
	var names []string
	var cur []byte
	for r.Len() > 0 {
		b, err := r.U8()
		if err != nil {
			return nil, resultcode.ErrTruncated
		}
		if b == 0 {
			names = append(names, string(cur))
			cur = nil
			continue
		}
		cur = append(cur, b)
	}
	if len(cur) > 0 {
		names = append(names, string(cur))
	}
	return names, nil
}

func parsePlacements(r *chunked.Reader) ([]Placement, error) {
	var out []Placement
	for r.Len() > 0 {
		var pl Placement
		var err error
		if pl.NameID, err = r.U32(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		if pl.UniqueID, err = r.U32(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		if pl.Position, err = r.Vec3(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		if pl.Rotation, err = r.Vec3(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		if pl.Scale, err = r.F32(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		if pl.BoundsMin, err = r.Vec3(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		if pl.BoundsMax, err = r.Vec3(); err != nil {
			return nil, resultcode.ErrTruncated
		}
		out = append(out, pl)
	}
	return out, nil
}
