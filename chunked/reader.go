// Package chunked reads the FourCC-tagged chunk container format shared by
// every input file: a 4-byte tag, a 4-byte little-endian size, then size
// bytes of payload. Chunks may appear in any order and unknown tags must be
// skippable, so Reader exposes chunk iteration rather than assuming a fixed
// layout.
package chunked

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/worldnav/worldnav/resultcode"
)

// Tag is a 4-byte FourCC chunk identifier, stored and compared in the byte
// order it appears on the wire (callers build literals with NewTag("MVER")).
type Tag [4]byte

func (t Tag) String() string { return string(t[:]) }

// NewTag builds a Tag from a 4-character string.
func NewTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

// Chunk is one decoded FourCC record: its tag and a Reader scoped to just
// its payload bytes.
type Chunk struct {
	Tag  Tag
	Size uint32
	R    *Reader
}

// Reader is a bounds-checked, little-endian cursor over an in-memory byte
// blob. Every read past the end of the buffer returns resultcode.ErrTruncated
// instead of panicking, so a malformed file degrades to a clean error.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps buf for chunked reading starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.off }

// Seek moves the cursor to an absolute offset within the buffer.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return resultcode.ErrTruncated
	}
	r.off = off
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, resultcode.ErrTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Bytes reads and returns the next n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) { return r.take(n) }

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 float32.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Vec3 reads three consecutive float32s.
func (r *Reader) Vec3() ([3]float32, error) {
	var v [3]float32
	for i := range v {
		f, err := r.F32()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// NextChunk reads the next chunk header (tag + size) and returns a Chunk
// whose R is a fresh Reader scoped to exactly that chunk's payload. The
// outer reader's cursor is advanced past the payload regardless of whether
// the caller reads all of it.
func (r *Reader) NextChunk() (Chunk, error) {
	if r.Len() < 8 {
		return Chunk{}, io.EOF
	}
	tagBytes, err := r.take(4)
	if err != nil {
		return Chunk{}, err
	}
	var tag Tag
	copy(tag[:], tagBytes)

	size, err := r.U32()
	if err != nil {
		return Chunk{}, err
	}
	payload, err := r.take(int(size))
	if err != nil {
		return Chunk{}, resultcode.ErrTruncated
	}
	return Chunk{Tag: tag, Size: size, R: NewReader(payload)}, nil
}

// Chunks walks every remaining chunk in r, calling fn for each. Reading
// stops at the first error fn returns, and Chunks returns that error; the
// io.EOF produced by NextChunk ends iteration cleanly with nil. Unknown tags are
// simply handed to fn, which is free to ignore them, satisfying "ignore
// unknown chunks".
func (r *Reader) Chunks(fn func(Chunk) error) error {
	for {
		c, err := r.NextChunk()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
}
