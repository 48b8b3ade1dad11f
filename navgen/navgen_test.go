package navgen

import (
	"testing"

	"github.com/arl/go-detour/sample"
	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/meshbuild"
)

func TestToRecastAxesSwapsYAndZ(t *testing.T) {
	in := []float32{1, 2, 3, 4, 5, 6}
	got := toRecastAxes(in)
	assert.Equal(t, []float32{1, 3, 2, 4, 6, 5}, got)
}

func TestToRecastAxesDoesNotMutateInput(t *testing.T) {
	in := []float32{1, 2, 3}
	cp := append([]float32(nil), in...)
	toRecastAxes(in)
	assert.Equal(t, cp, in)
}

func TestFlipWindingSwapsSecondAndThirdIndex(t *testing.T) {
	in := []int32{0, 1, 2, 3, 4, 5}
	got := flipWinding(in)
	assert.Equal(t, []int32{0, 2, 1, 3, 5, 4}, got)
}

func TestFlipWindingDoesNotMutateInput(t *testing.T) {
	in := []int32{0, 1, 2}
	cp := append([]int32(nil), in...)
	flipWinding(in)
	assert.Equal(t, cp, in)
}

func TestAreaFlagToPolyAreaMapsWaterAndLavaToWater(t *testing.T) {
	assert.Equal(t, uint8(sample.PolyAreaWater), areaFlagToPolyArea(meshbuild.AreaWater))
	assert.Equal(t, uint8(sample.PolyAreaWater), areaFlagToPolyArea(meshbuild.AreaLava))
}

func TestAreaFlagToPolyAreaMapsGroundToGround(t *testing.T) {
	assert.Equal(t, uint8(sample.PolyAreaGround), areaFlagToPolyArea(meshbuild.AreaGround))
}

func TestAreaFlagToPolyAreaMapsDoodadToGrass(t *testing.T) {
	assert.Equal(t, uint8(sample.PolyAreaGrass), areaFlagToPolyArea(meshbuild.AreaDoodad))
}

func TestBuildRejectsEmptySoup(t *testing.T) {
	_, err := Build(meshbuild.Soup{}, 0, 0, DefaultSettings())
	assert.Error(t, err)
}
