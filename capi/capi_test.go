package capi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/query"
	"github.com/worldnav/worldnav/resultcode"
)

func TestRegisterLookupUnregister(t *testing.T) {
	m := query.NewMap(t.TempDir(), "Azeroth", nil)

	h := register(m)
	assert.NotEqual(t, unsafe.Pointer(nil), h)

	got, ok := lookup(h)
	assert.True(t, ok)
	assert.True(t, got == m)

	unregister(h)
	_, ok = lookup(h)
	assert.False(t, ok)
}

func TestRegisterDistinctHandles(t *testing.T) {
	m1 := query.NewMap(t.TempDir(), "Azeroth", nil)
	m2 := query.NewMap(t.TempDir(), "Kalimdor", nil)

	h1 := register(m1)
	h2 := register(m2)
	defer unregister(h1)
	defer unregister(h2)

	assert.NotEqual(t, h1, h2)

	got1, ok := lookup(h1)
	assert.True(t, ok)
	assert.True(t, got1 == m1)

	got2, ok := lookup(h2)
	assert.True(t, ok)
	assert.True(t, got2 == m2)
}

func TestLookupUnknownHandle(t *testing.T) {
	_, ok := lookup(unsafe.Pointer(uintptr(0xdeadbeef)))
	assert.False(t, ok)
}

func TestCodeTranslatesResultcodeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want resultcode.Code
	}{
		{"nil is ok", nil, resultcode.Ok},
		{"not found", resultcode.ErrNotFound, resultcode.NotFound},
		{"too small", resultcode.ErrTooSmall, resultcode.TooSmall},
		{"out of range", resultcode.ErrOutOfRange, resultcode.OutOfRange},
		{"not loaded", resultcode.ErrNotLoaded, resultcode.NotLoaded},
		{"wrapped corrupt", resultcode.Wrap(resultcode.ErrCorrupt, "tile"), resultcode.Corrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultcode.Code(code(tt.err)))
		})
	}
}
