package chunked

import (
	"encoding/binary"
	"math"
)

// Writer appends little-endian primitives and FourCC chunks to an in-memory
// buffer, mirroring Reader on the encode side. It is used by the serializer
// and by tests that build synthetic input fixtures.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) PutU8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutI32(v int32) { w.PutU32(uint32(v)) }

func (w *Writer) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutF32(v float32) { w.PutU32(math.Float32bits(v)) }

func (w *Writer) PutVec3(v [3]float32) {
	for _, f := range v {
		w.PutF32(f)
	}
}

// PutChunk writes tag, the payload's length, then the payload itself.
func (w *Writer) PutChunk(tag Tag, payload []byte) {
	w.PutBytes(tag[:])
	w.PutU32(uint32(len(payload)))
	w.PutBytes(payload)
}
