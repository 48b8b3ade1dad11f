package worldmap

import "github.com/arl/gogeo/f32/d3"

// WorldObject is a large static mesh (WMO), identified by UniqueID and
// shared across every tile that places it. It owns three independent
// meshes: the structural mesh, its own liquid mesh, and the mesh of any
// doodads nested inside it.
type WorldObject struct {
	ID UniqueID

	Mesh       Mesh
	LiquidMesh Mesh
	DoodadMesh Mesh

	bounds      d3.Rectangle
	boundsValid bool
}

// Bounds returns the union of the structural, liquid and doodad meshes'
// bounding boxes, computed once and cached (WorldObjects are immutable once
// inserted into the dedup index).
func (w *WorldObject) Bounds() d3.Rectangle {
	if w.boundsValid {
		return w.bounds
	}
	b := w.Mesh.Bounds()
	b = b.Union(w.LiquidMesh.Bounds())
	b = b.Union(w.DoodadMesh.Bounds())
	w.bounds = b
	w.boundsValid = true
	return b
}
