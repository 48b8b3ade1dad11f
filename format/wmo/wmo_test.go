package wmo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/chunked"
)

func buildRoot(t *testing.T, groupCount uint32, doodadNames []string) []byte {
	t.Helper()
	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("MVER"), []byte{17, 0, 0, 0})

	mohd := chunked.NewWriter()
	mohd.PutU32(groupCount)
	w.PutChunk(chunked.NewTag("MOHD"), mohd.Bytes())

	var modn []byte
	offsets := make([]uint32, len(doodadNames))
	for i, n := range doodadNames {
		offsets[i] = uint32(len(modn))
		modn = append(modn, append([]byte(n), 0)...)
	}
	w.PutChunk(chunked.NewTag("MODN"), modn)

	if len(doodadNames) > 0 {
		modd := chunked.NewWriter()
		for _, off := range offsets {
			modd.PutU32(off)
			modd.PutVec3([3]float32{1, 2, 3})
			for i := 0; i < 4; i++ {
				modd.PutF32(float32(i))
			}
			modd.PutF32(1) // scale
			modd.PutU32(0) // color
		}
		w.PutChunk(chunked.NewTag("MODD"), modd.Bytes())
	}

	return w.Bytes()
}

func TestParseRootDecodesGroupCountAndDoodads(t *testing.T) {
	data := buildRoot(t, 2, []string{"World/doodad/Rock.m2"})
	root, err := ParseRoot(data)
	assert.NoError(t, err)
	assert.Equal(t, 2, root.GroupCount)

	if assert.Len(t, root.Doodads, 1) {
		assert.Equal(t, "World/doodad/Rock.m2", root.Doodads[0].Name)
		assert.Equal(t, [3]float32{1, 2, 3}, root.Doodads[0].Position)
		assert.Equal(t, float32(1), root.Doodads[0].Scale)
	}
}

func TestParseRootNoDoodads(t *testing.T) {
	data := buildRoot(t, 1, nil)
	root, err := ParseRoot(data)
	assert.NoError(t, err)
	assert.Empty(t, root.Doodads)
}

func buildGroup(t *testing.T, withLiquid bool) []byte {
	t.Helper()
	mogp := chunked.NewWriter()

	movt := chunked.NewWriter()
	movt.PutVec3([3]float32{0, 0, 0})
	movt.PutVec3([3]float32{1, 0, 0})
	movt.PutVec3([3]float32{0, 1, 0})
	mogp.PutChunk(chunked.NewTag("MOVT"), movt.Bytes())

	mopy := chunked.NewWriter()
	mopy.PutU8(5) // flags
	mopy.PutU8(0) // material
	mogp.PutChunk(chunked.NewTag("MOPY"), mopy.Bytes())

	movi := chunked.NewWriter()
	movi.PutU16(0)
	movi.PutU16(1)
	movi.PutU16(2)
	mogp.PutChunk(chunked.NewTag("MOVI"), movi.Bytes())

	if withLiquid {
		mliq := chunked.NewWriter()
		mliq.PutU32(1) // width
		mliq.PutU32(1) // height
		mliq.PutVec3([3]float32{0, 0, 0})
		mliq.PutU8(2) // type
		for i := 0; i < 4; i++ {
			mliq.PutF32(float32(i))
		}
		mogp.PutChunk(chunked.NewTag("MLIQ"), mliq.Bytes())
	}

	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("MOGP"), mogp.Bytes())
	return w.Bytes()
}

func TestParseGroupDecodesVerticesTrianglesAndFlags(t *testing.T) {
	data := buildGroup(t, false)
	g, err := ParseGroup(data)
	assert.NoError(t, err)

	assert.Len(t, g.Vertices, 3)
	if assert.Len(t, g.Triangles, 1) {
		tr := g.Triangles[0]
		assert.Equal(t, Triangle{A: 0, B: 1, C: 2, Flags: 5}, tr)
	}
	assert.Nil(t, g.Liquid)
}

func TestParseGroupDecodesLiquidMesh(t *testing.T) {
	data := buildGroup(t, true)
	g, err := ParseGroup(data)
	assert.NoError(t, err)

	if assert.NotNil(t, g.Liquid) {
		assert.Equal(t, uint8(2), g.Liquid.Type)
		assert.Len(t, g.Liquid.Vertices, 4) // (width+1)*(height+1) = 2*2
		assert.Len(t, g.Liquid.Triangles, 2)
	}
}

func TestParseGroupIgnoresNonMOGPTopLevelChunks(t *testing.T) {
	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("ZZZZ"), []byte{1, 2, 3})
	g, err := ParseGroup(w.Bytes())
	assert.NoError(t, err)
	assert.Empty(t, g.Vertices)
}
