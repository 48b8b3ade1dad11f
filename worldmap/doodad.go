package worldmap

import "github.com/arl/gogeo/f32/d3"

// Doodad is a small static mesh (vegetation, props), identified by UniqueID
// and shared across every tile that references it.
type Doodad struct {
	ID UniqueID

	// Mesh is this doodad's local-space triangle mesh, shared by every
	// placement; each placement's position/rotation/scale is applied when
	// the mesh is copied into a tile's soup — see Placement.Transform.
	Mesh Mesh

	ZMin, ZMax float32
}

// Bounds returns the doodad's XYZ bounding box.
func (d *Doodad) Bounds() d3.Rectangle {
	b := d.Mesh.Bounds()
	if d.Mesh.VertCount() == 0 {
		return b
	}
	b.Min[2], b.Max[2] = d.ZMin, d.ZMax
	return b
}

// Placement carries the per-reference instance data recorded in a Tile (or
// WorldObject, for nested doodads): UniqueId, the referenced asset's name
// id, world-space transform, and precomputed bounds.
type Placement struct {
	UniqueID UniqueID
	NameID   uint32
	Position d3.Vec3
	Rotation d3.Vec3 // Euler angles, radians
	Scale    float32
	Bounds   d3.Rectangle
}

// Rotation3x3 returns the placement's rotation as a 3x3 row-major matrix,
// built from Euler angles in ZYX application order (yaw, then pitch, then
// roll), matching the source format's doodad/WMO placement convention.
func (p *Placement) Rotation3x3() [9]float32 {
	return eulerToMatrix(p.Rotation[0], p.Rotation[1], p.Rotation[2])
}

func eulerToMatrix(rx, ry, rz float32) [9]float32 {
	sx, cx := sincos(rx)
	sy, cy := sincos(ry)
	sz, cz := sincos(rz)

	// R = Rz * Ry * Rx
	return [9]float32{
		cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx,
		sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx,
		-sy, cy * sx, cy * cx,
	}
}

// Transform applies the placement's scale, rotation then translation to a
// local-space point, yielding world-space coordinates.
func (p *Placement) Transform(local d3.Vec3) d3.Vec3 {
	m := p.Rotation3x3()
	x := local[0] * p.Scale
	y := local[1] * p.Scale
	z := local[2] * p.Scale

	return d3.Vec3{
		m[0]*x + m[1]*y + m[2]*z + p.Position[0],
		m[3]*x + m[4]*y + m[5]*z + p.Position[1],
		m[6]*x + m[7]*y + m[8]*z + p.Position[2],
	}
}
