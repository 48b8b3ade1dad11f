// Package capi is the C ABI surface for this module's runtime query engine,
// mirroring pathfind_c_bindings.hpp's pathfind_* function set: a handle for
// one loaded map, plus tile-load, zone/area, path, height and
// line-of-sight queries, all reachable from C or any other language able to
// link a cgo-built shared archive.
//
// Each loaded Map lives in a package-level table keyed by the address of a
// small pinned Go allocation; that address is the opaque pointer the C side
// holds and passes back on every call, the same indirection cgo libraries
// used before Go's own cgo.Handle existed.
package capi

/*
#include <stdint.h>

typedef struct {
	float x;
	float y;
	float z;
} Vertex;
*/
import "C"

import (
	"os"
	"sync"
	"unsafe"

	"github.com/worldnav/worldnav/query"
	"github.com/worldnav/worldnav/resultcode"
)

// handleToken is the pinned Go allocation a handle's unsafe.Pointer
// actually points to: a real heap object, not a reinterpreted integer, so
// the conversions below never run afoul of unsafe.Pointer's rules. Its
// address is unique for as long as it stays registered in handles.
type handleToken byte

var (
	handlesMu sync.Mutex
	handles   = map[*handleToken]*query.Map{}
)

func register(m *query.Map) unsafe.Pointer {
	tok := new(handleToken)
	handlesMu.Lock()
	handles[tok] = m
	handlesMu.Unlock()
	return unsafe.Pointer(tok)
}

func lookup(h unsafe.Pointer) (*query.Map, bool) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	m, ok := handles[(*handleToken)(h)]
	return m, ok
}

func unregister(h unsafe.Pointer) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	delete(handles, (*handleToken)(h))
}

// code translates a Go error into the C ABI's uint8 result code.
func code(err error) (c C.uint8_t) {
	return C.uint8_t(resultcode.CodeOf(err))
}

// recoverToInternal, deferred by every export that reports a result code,
// recovers from any panic reaching this boundary (an out-of-range slice, a
// nil map dereference from caller misuse) and reports Internal instead of
// letting it unwind into C and crash the host process.
func recoverToInternal(c *C.uint8_t) {
	if r := recover(); r != nil {
		*c = C.uint8_t(resultcode.Internal)
	}
}

//export pathfind_new_map
func pathfind_new_map(dataPath, mapName *C.char, result *C.uint8_t) unsafe.Pointer {
	defer recoverToInternal(result)

	if _, err := os.Stat(C.GoString(dataPath)); err != nil {
		*result = C.uint8_t(resultcode.NotFound)
		return nil
	}
	m := query.NewMap(C.GoString(dataPath), C.GoString(mapName), nil)
	*result = C.uint8_t(resultcode.Ok)
	return register(m)
}

//export pathfind_free_map
func pathfind_free_map(h unsafe.Pointer) {
	unregister(h)
}

//export pathfind_load_all_adts
func pathfind_load_all_adts(h unsafe.Pointer, amountOfADTsLoaded *C.int32_t) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}
	n, err := m.LoadAllTiles()
	*amountOfADTsLoaded = C.int32_t(n)
	return code(err)
}

//export pathfind_load_adt
func pathfind_load_adt(h unsafe.Pointer, adtX, adtY C.int, outADTX, outADTY *C.float) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}
	x, y := int32(adtX), int32(adtY)
	err := m.LoadTile(x, y)
	if err == nil {
		*outADTX = C.float(x)
		*outADTY = C.float(y)
	}
	return code(err)
}

//export pathfind_load_adt_at
func pathfind_load_adt_at(h unsafe.Pointer, x, y C.float, outADTX, outADTY *C.float) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}
	err := m.LoadTileAt(float32(x), float32(y))
	if err == nil {
		tx, ty := query.TileCoordAt(float32(x), float32(y))
		*outADTX = C.float(tx)
		*outADTY = C.float(ty)
	}
	return code(err)
}

//export pathfind_get_zone_and_area
func pathfind_get_zone_and_area(h unsafe.Pointer, x, y, z C.float, outZone, outArea *C.uint32_t) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}
	zone, area, err := m.GetZoneAndArea(float32(x), float32(y), float32(z))
	if err == nil {
		*outZone = C.uint32_t(zone)
		*outArea = C.uint32_t(area)
	}
	return code(err)
}

//export pathfind_find_path
func pathfind_find_path(
	h unsafe.Pointer,
	startX, startY, startZ C.float,
	stopX, stopY, stopZ C.float,
	buffer *C.Vertex,
	bufferLength C.uint32_t,
	amountOfVertices *C.uint32_t,
) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}

	out := make([][3]float32, int(bufferLength))
	n, err := m.FindPath(
		[3]float32{float32(startX), float32(startY), float32(startZ)},
		[3]float32{float32(stopX), float32(stopY), float32(stopZ)},
		out,
	)
	*amountOfVertices = C.uint32_t(n)
	if err != nil {
		return code(err)
	}

	dst := unsafe.Slice(buffer, int(bufferLength))
	for i := 0; i < n; i++ {
		dst[i] = C.Vertex{x: C.float(out[i][0]), y: C.float(out[i][1]), z: C.float(out[i][2])}
	}
	return C.uint8_t(resultcode.Ok)
}

//export pathfind_find_heights
func pathfind_find_heights(
	h unsafe.Pointer,
	x, y C.float,
	buffer *C.float,
	bufferLength C.uint32_t,
	amountOfHeights *C.uint32_t,
) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}

	out := make([]float32, int(bufferLength))
	n, err := m.FindHeights(float32(x), float32(y), out)
	*amountOfHeights = C.uint32_t(n)
	if err != nil {
		return code(err)
	}

	dst := unsafe.Slice(buffer, int(bufferLength))
	for i := 0; i < n; i++ {
		dst[i] = C.float(out[i])
	}
	return C.uint8_t(resultcode.Ok)
}

//export pathfind_find_height
func pathfind_find_height(
	h unsafe.Pointer,
	startX, startY, startZ C.float,
	stopX, stopY C.float,
	outStopZ *C.float,
) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}
	z, err := m.FindHeight(
		[3]float32{float32(startX), float32(startY), float32(startZ)},
		[2]float32{float32(stopX), float32(stopY)},
	)
	if err == nil {
		*outStopZ = C.float(z)
	}
	return code(err)
}

//export pathfind_line_of_sight
func pathfind_line_of_sight(
	h unsafe.Pointer,
	startX, startY, startZ C.float,
	stopX, stopY, stopZ C.float,
	lineOfSight *C.uint8_t,
	doodads C.uint8_t,
) (status C.uint8_t) {
	defer recoverToInternal(&status)

	m, ok := lookup(h)
	if !ok {
		return C.uint8_t(resultcode.NotFound)
	}
	los, err := m.LineOfSight(
		[3]float32{float32(startX), float32(startY), float32(startZ)},
		[3]float32{float32(stopX), float32(stopY), float32(stopZ)},
		doodads != 0,
	)
	if err != nil {
		return code(err)
	}
	if los {
		*lineOfSight = 1
	} else {
		*lineOfSight = 0
	}
	return C.uint8_t(resultcode.Ok)
}
