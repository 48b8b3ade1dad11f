// Package area resolves a chunk's raw AreaId into a zone/area pair via an
// optional lookup table. Per OQ-1, the table is optional: when absent,
// every lookup degrades to zone==area==the raw id rather than failing.
package area

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/worldnav/worldnav/resultcode"
)

// Entry is one row of the area table: an AreaId and the zone it rolls up
// into (areas and zones share the same id space; a top-level zone is its
// own zone).
type Entry struct {
	AreaID uint16
	ZoneID uint16
	Name   string
}

// Table maps AreaId to its resolved zone.
type Table struct {
	entries map[uint16]Entry
}

// ParseCSV reads a simple "areaid,zoneid,name" table, one row per line,
// blank lines and lines starting with '#' ignored.
func ParseCSV(r io.Reader) (*Table, error) {
	t := &Table{entries: make(map[uint16]Entry)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ",", 3)
		if len(fields) < 2 {
			return nil, resultcode.ErrCorrupt
		}
		areaID, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 16)
		if err != nil {
			return nil, resultcode.ErrCorrupt
		}
		zoneID, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
		if err != nil {
			return nil, resultcode.ErrCorrupt
		}
		var name string
		if len(fields) == 3 {
			name = strings.TrimSpace(fields[2])
		}
		t.entries[uint16(areaID)] = Entry{
			AreaID: uint16(areaID),
			ZoneID: uint16(zoneID),
			Name:   name,
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve returns the zone and area ids for raw. With a nil Table, or an
// id the table doesn't cover, it degrades to zone==area==raw rather than
// erroring: §OQ-1 treats the table as enrichment, never a hard
// dependency.
func (t *Table) Resolve(raw uint16) (zoneID, areaID uint16) {
	if t == nil {
		return raw, raw
	}
	e, ok := t.entries[raw]
	if !ok {
		return raw, raw
	}
	return e.ZoneID, e.AreaID
}

// Name returns the human-readable area name, or "" if unknown.
func (t *Table) Name(raw uint16) string {
	if t == nil {
		return ""
	}
	return t.entries[raw].Name
}
