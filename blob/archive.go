package blob

import "sort"

// ArchiveProvider indexes an immutable set of named byte ranges built once
// at construction time. It stands in for a real read-only archive-set reader
// (MPQ/CASC), which this spec treats as an external collaborator; this
// implementation is what the tests exercise directly (the build CLI reads
// through DirProvider), and is
// also the shape a real archive reader's index would take once parsed.
//
// Lookups are read-only after construction, so ArchiveProvider needs no
// locking to be safe for concurrent workers.
type ArchiveProvider struct {
	names []string
	data  [][]byte
}

// NewArchiveProvider builds a provider from a name->bytes map. Entries are
// sorted once so Open can binary-search.
func NewArchiveProvider(entries map[string][]byte) *ArchiveProvider {
	p := &ArchiveProvider{
		names: make([]string, 0, len(entries)),
		data:  make([][]byte, 0, len(entries)),
	}
	for name, data := range entries {
		p.names = append(p.names, Normalize(name))
		p.data = append(p.data, data)
	}
	idx := make([]int, len(p.names))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return p.names[idx[i]] < p.names[idx[j]] })

	sortedNames := make([]string, len(idx))
	sortedData := make([][]byte, len(idx))
	for i, j := range idx {
		sortedNames[i] = p.names[j]
		sortedData[i] = p.data[j]
	}
	p.names, p.data = sortedNames, sortedData
	return p
}

func (p *ArchiveProvider) Open(logicalName string) (Blob, error) {
	name := Normalize(logicalName)
	i := sort.SearchStrings(p.names, name)
	if i >= len(p.names) || p.names[i] != name {
		return nil, NotFoundError(logicalName)
	}
	return NewMemBlob(p.data[i]), nil
}
