package worldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorldObjectBoundsUnionsAllThreeMeshes(t *testing.T) {
	w := &WorldObject{ID: 1}
	w.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	w.LiquidMesh.AppendTriangle([3]float32{-5, 0, 0}, [3]float32{-4, 0, 0}, [3]float32{-5, 1, 0})
	w.DoodadMesh.AppendTriangle([3]float32{0, 0, 10}, [3]float32{1, 0, 10}, [3]float32{0, 1, 10})

	b := w.Bounds()
	assert.Equal(t, float32(-5), b.Min[0])
	assert.Equal(t, float32(10), b.Max[2])
}

func TestWorldObjectBoundsIsCachedAfterFirstCall(t *testing.T) {
	w := &WorldObject{ID: 1}
	w.Mesh.AppendTriangle([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})

	first := w.Bounds()

	w.Mesh.AppendTriangle([3]float32{100, 100, 100}, [3]float32{101, 100, 100}, [3]float32{100, 101, 100})
	second := w.Bounds()

	assert.Equal(t, first, second)
	assert.Equal(t, float32(1), second.Max[0])
}
