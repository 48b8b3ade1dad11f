package m2

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/chunked"
	"github.com/worldnav/worldnav/resultcode"
)

func TestParseCollisionGeometry(t *testing.T) {
	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("MVER"), []byte{18, 0, 0, 0})

	verts := chunked.NewWriter()
	verts.PutVec3([3]float32{0, 0, 0})
	verts.PutVec3([3]float32{1, 0, 0})
	verts.PutVec3([3]float32{0, 1, 0})
	w.PutChunk(chunked.NewTag("MD2V"), verts.Bytes())

	tris := chunked.NewWriter()
	tris.PutU32(0)
	tris.PutU32(1)
	tris.PutU32(2)
	w.PutChunk(chunked.NewTag("MD2I"), tris.Bytes())

	bounds := chunked.NewWriter()
	bounds.PutF32(-1)
	bounds.PutF32(5)
	w.PutChunk(chunked.NewTag("MD2B"), bounds.Bytes())

	p, err := Parse(w.Bytes())
	assert.NoError(t, err)
	assert.Len(t, p.Vertices, 3)
	assert.Equal(t, [3]float32{1, 0, 0}, p.Vertices[1])
	assert.Equal(t, [][3]uint32{{0, 1, 2}}, p.Triangles)
	assert.Equal(t, float32(-1), p.ZMin)
	assert.Equal(t, float32(5), p.ZMax)
}

func TestParseIgnoresUnknownChunks(t *testing.T) {
	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("MVER"), []byte{18, 0, 0, 0})
	w.PutChunk(chunked.NewTag("ZZZZ"), []byte{1, 2, 3})

	p, err := Parse(w.Bytes())
	assert.NoError(t, err)
	assert.Empty(t, p.Vertices)
}

func TestParseDropsTrailingPartialVertexRecord(t *testing.T) {
	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("MVER"), []byte{18, 0, 0, 0})

	verts := chunked.NewWriter()
	verts.PutVec3([3]float32{1, 2, 3})
	verts.PutF32(9) // a trailing partial record, under the 12-byte minimum
	w.PutChunk(chunked.NewTag("MD2V"), verts.Bytes())

	p, err := Parse(w.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, [][3]float32{{1, 2, 3}}, p.Vertices)
}

func TestParseTruncatedBoundsChunkErrors(t *testing.T) {
	w := chunked.NewWriter()
	w.PutChunk(chunked.NewTag("MVER"), []byte{18, 0, 0, 0})
	w.PutChunk(chunked.NewTag("MD2B"), []byte{0, 0, 128, 63}) // only ZMin, ZMax missing

	_, err := Parse(w.Bytes())
	assert.ErrorIs(t, err, resultcode.ErrTruncated)
}

func TestParseEmptyInputIsNotAnError(t *testing.T) {
	p, err := Parse(nil)
	assert.NoError(t, err)
	assert.Empty(t, p.Vertices)
	assert.Empty(t, p.Triangles)
}
