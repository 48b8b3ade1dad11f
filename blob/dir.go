package blob

import (
	"os"
	"path/filepath"
)

// DirProvider resolves logical names against a filesystem tree rooted at
// Root. It opens a fresh *os.File per call, so it requires no internal
// locking to be safe for concurrent workers.
type DirProvider struct {
	Root string
}

// NewDirProvider returns a Provider backed by the directory tree at root.
func NewDirProvider(root string) *DirProvider {
	return &DirProvider{Root: root}
}

func (p *DirProvider) Open(logicalName string) (Blob, error) {
	rel := filepath.FromSlash(Normalize(logicalName))
	full := filepath.Join(p.Root, rel)

	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFoundError(logicalName)
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileBlob{File: f, size: fi.Size()}, nil
}

type fileBlob struct {
	*os.File
	size int64
}

func (f *fileBlob) Size() int64 { return f.size }
