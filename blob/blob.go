// Package blob abstracts name-to-bytes lookup over a game data tree. The
// build pipeline never opens files directly; it always goes through a
// Provider, so the real archive format (MPQ/CASC or any other resource
// bundle) stays an external collaborator behind this interface.
package blob

import (
	"bytes"
	"io"
	"strings"

	"github.com/worldnav/worldnav/resultcode"
)

// Blob is an opened, seekable resource. Callers must Close it when done.
type Blob interface {
	io.ReadSeeker
	io.Closer
	// Size returns the total length of the blob in bytes.
	Size() int64
}

// Provider resolves a logical resource path to a Blob. Logical names use
// forward or backward slashes; implementations normalize internally.
// Implementations must be safe for concurrent use by multiple build workers.
type Provider interface {
	Open(logicalName string) (Blob, error)
}

// Normalize converts a logical resource name to forward-slash form, which is
// what every Provider implementation keys its lookups by.
func Normalize(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// memBlob adapts a byte slice to the Blob interface.
type memBlob struct {
	*bytes.Reader
}

func (memBlob) Close() error { return nil }

func (m memBlob) Size() int64 { return m.Reader.Size() }

// NewMemBlob wraps data as a Blob, useful for tests and for the archive
// provider below.
func NewMemBlob(data []byte) Blob {
	return memBlob{bytes.NewReader(data)}
}

// NotFoundError satisfies resultcode.ErrNotFound for a specific name.
func NotFoundError(name string) error {
	return resultcode.Wrap(resultcode.ErrNotFound, "blob: "+name)
}
