package worldmap

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/resultcode"
)

func TestSetTileAndTileRoundTrip(t *testing.T) {
	m := NewMap("Azeroth", false)
	assert.Nil(t, m.Tile(1, 1))

	tile := NewTile(1, 1)
	m.SetTile(tile)
	assert.True(t, tile == m.Tile(1, 1))
}

func TestTileOutOfRangeReturnsNil(t *testing.T) {
	m := NewMap("Azeroth", false)
	assert.Nil(t, m.Tile(-1, 0))
	assert.Nil(t, m.Tile(GridSize, 0))
}

func TestEnsureWorldObjectLoadsOncePerID(t *testing.T) {
	m := NewMap("Azeroth", false)
	var loads int32

	load := func() (*WorldObject, error) {
		atomic.AddInt32(&loads, 1)
		return &WorldObject{ID: 1}, nil
	}

	var wg sync.WaitGroup
	results := make([]*WorldObject, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := m.EnsureWorldObject(1, load)
			assert.NoError(t, err)
			results[i] = w
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads)
	for _, w := range results {
		assert.True(t, results[0] == w)
	}

	got, ok := m.WorldObjectByID(1)
	assert.True(t, ok)
	assert.True(t, results[0] == got)
}

func TestEnsureWorldObjectPropagatesLoadError(t *testing.T) {
	m := NewMap("Azeroth", false)
	sentinel := resultcode.ErrCorrupt

	_, err := m.EnsureWorldObject(2, func() (*WorldObject, error) {
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, ok := m.WorldObjectByID(2)
	assert.False(t, ok, "a failed load must not be retrievable as if it succeeded")
}

func TestWorldObjectByIDUnknownIsNotOK(t *testing.T) {
	m := NewMap("Azeroth", false)
	_, ok := m.WorldObjectByID(999)
	assert.False(t, ok)
}

func TestDoodadByIDMirrorsWorldObjectByID(t *testing.T) {
	m := NewMap("Azeroth", false)
	d, err := m.EnsureDoodad(5, func() (*Doodad, error) { return &Doodad{ID: 5}, nil })
	assert.NoError(t, err)

	got, ok := m.DoodadByID(5)
	assert.True(t, ok)
	assert.True(t, d == got)
}

func TestWorldObjectIDsOnlyListsSuccessfulLoads(t *testing.T) {
	m := NewMap("Azeroth", false)
	m.EnsureWorldObject(1, func() (*WorldObject, error) { return &WorldObject{ID: 1}, nil })
	m.EnsureWorldObject(2, func() (*WorldObject, error) { return nil, resultcode.ErrCorrupt })
	m.EnsureWorldObject(3, func() (*WorldObject, error) { return &WorldObject{ID: 3}, nil })

	ids := m.WorldObjectIDs()
	assert.ElementsMatch(t, []UniqueID{1, 3}, ids)
}

func TestGlobalWorldObjectRequiresIsGlobal(t *testing.T) {
	m := NewMap("Orgrimmar", false)
	_, err := m.GlobalWorldObject()
	assert.ErrorIs(t, err, resultcode.ErrOutOfRange)
}

func TestGlobalWorldObjectNotLoadedYet(t *testing.T) {
	m := NewMap("Karazhan", true)
	assert.True(t, m.IsGlobal())
	_, err := m.GlobalWorldObject()
	assert.ErrorIs(t, err, resultcode.ErrNotLoaded)
}

func TestSetGlobalWorldObjectThenRetrieve(t *testing.T) {
	m := NewMap("Karazhan", true)
	w := &WorldObject{ID: 1}
	m.SetGlobalWorldObject(w)

	got, err := m.GlobalWorldObject()
	assert.NoError(t, err)
	assert.True(t, w == got)
}

func TestTeardownClearsEverything(t *testing.T) {
	m := NewMap("Azeroth", true)
	m.SetTile(NewTile(0, 0))
	m.EnsureWorldObject(1, func() (*WorldObject, error) { return &WorldObject{ID: 1}, nil })
	m.SetGlobalWorldObject(&WorldObject{ID: 2})

	m.Teardown()

	assert.Nil(t, m.Tile(0, 0))
	_, ok := m.WorldObjectByID(1)
	assert.False(t, ok)
	_, err := m.GlobalWorldObject()
	assert.ErrorIs(t, err, resultcode.ErrNotLoaded)
}
