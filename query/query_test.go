package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/resultcode"
	"github.com/worldnav/worldnav/worldmap"
)

func TestWorldTileCoordMatchesTileBoundsOrigin(t *testing.T) {
	origin := worldmap.TileBounds(0, 0).Max[0]

	x, y := worldTileCoord(origin-1, origin-1)
	assert.Equal(t, int32(0), x)
	assert.Equal(t, int32(0), y)

	x, y = worldTileCoord(origin-worldmap.TileSize-1, origin-worldmap.TileSize-1)
	assert.Equal(t, int32(1), x)
	assert.Equal(t, int32(1), y)
}

func TestTileCoordAtMatchesWorldTileCoord(t *testing.T) {
	wx, wy := float32(100), float32(200)
	wantX, wantY := worldTileCoord(wx, wy)
	gotX, gotY := TileCoordAt(wx, wy)
	assert.Equal(t, wantX, gotX)
	assert.Equal(t, wantY, gotY)
}

func TestToFromRecastVecRoundTrip(t *testing.T) {
	v := [3]float32{1, 2, 3}
	r := toRecastVec(v)
	assert.Equal(t, float32(1), r[0])
	assert.Equal(t, float32(3), r[1])
	assert.Equal(t, float32(2), r[2])

	back := fromRecastVec(r)
	assert.Equal(t, v, back)
}

func TestAbs32(t *testing.T) {
	assert.Equal(t, float32(3), abs32(3))
	assert.Equal(t, float32(3), abs32(-3))
	assert.Equal(t, float32(0), abs32(0))
}

func TestSortDescending(t *testing.T) {
	vals := []float32{1, 5, 3, -2, 4}
	sortDescending(vals)
	assert.Equal(t, []float32{5, 4, 3, 1, -2}, vals)
}

func TestSortDescendingEmptyAndSingle(t *testing.T) {
	empty := []float32{}
	sortDescending(empty)
	assert.Empty(t, empty)

	single := []float32{7}
	sortDescending(single)
	assert.Equal(t, []float32{7}, single)
}

func TestSampleColumnIsDescendingAndCoversExpectedRange(t *testing.T) {
	col := sampleColumn()
	assert.NotEmpty(t, col)
	assert.Equal(t, float32(2000), col[0])
	for i := 1; i < len(col); i++ {
		assert.Less(t, col[i], col[i-1])
	}
}

func TestFindPathBeforeAnyTileLoadedIsNotLoaded(t *testing.T) {
	m := NewMap(t.TempDir(), "Azeroth", nil)
	out := make([][3]float32, 4)
	_, err := m.FindPath([3]float32{0, 0, 0}, [3]float32{1, 1, 1}, out)
	assert.ErrorIs(t, err, resultcode.ErrNotLoaded)
}

func TestFindHeightsBeforeAnyTileLoadedIsNotLoaded(t *testing.T) {
	m := NewMap(t.TempDir(), "Azeroth", nil)
	out := make([]float32, 4)
	_, err := m.FindHeights(0, 0, out)
	assert.ErrorIs(t, err, resultcode.ErrNotLoaded)
}

func TestLineOfSightBeforeAnyTileLoadedIsNotLoaded(t *testing.T) {
	m := NewMap(t.TempDir(), "Azeroth", nil)
	_, err := m.LineOfSight([3]float32{0, 0, 0}, [3]float32{1, 1, 1}, false)
	assert.ErrorIs(t, err, resultcode.ErrNotLoaded)
}

func TestGetZoneAndAreaWithNoTileLoadedIsOutOfRange(t *testing.T) {
	m := NewMap(t.TempDir(), "Azeroth", nil)
	_, _, err := m.GetZoneAndArea(0, 0, 0)
	assert.ErrorIs(t, err, resultcode.ErrOutOfRange)
}

func TestLoadTileMissingFileIsNotFound(t *testing.T) {
	m := NewMap(t.TempDir(), "Azeroth", nil)
	err := m.LoadTile(0, 0)
	assert.ErrorIs(t, err, resultcode.ErrNotFound)
}

func TestLoadAllTilesWithNoFilesLoadsZero(t *testing.T) {
	m := NewMap(t.TempDir(), "Azeroth", nil)
	n, err := m.LoadAllTiles()
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}
