package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

var worldAxes = [3]rl.Vector3{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// NewAABBasOBB creates an axis-aligned OBB (no rotation)
func NewAABBasOBB(center, size rl.Vector3) OBB {
	return OBB{
		Center:   center,
		HalfSize: rl.Vector3{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2},
		Axes:     worldAxes,
	}
}

// newPlacedOBB builds the world box of a shape: the shape offset is applied
// first, then the owning body's transform.
func newPlacedOBB(size rl.Vector3, offset, body Transform) OBB {
	o := OBB{
		Center:   body.Apply(offset.Position),
		HalfSize: rl.Vector3{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2},
	}
	for i, axis := range worldAxes {
		o.Axes[i] = rl.Vector3Normalize(body.Rotate(offset.Rotate(axis)))
	}
	return o
}

// project returns the half-length of the box's shadow on axis.
func (o OBB) project(axis rl.Vector3) float32 {
	return o.HalfSize.X*math32.Abs(rl.Vector3DotProduct(o.Axes[0], axis)) +
		o.HalfSize.Y*math32.Abs(rl.Vector3DotProduct(o.Axes[1], axis)) +
		o.HalfSize.Z*math32.Abs(rl.Vector3DotProduct(o.Axes[2], axis))
}

// Bounds returns the world AABB enclosing the box.
func (o OBB) Bounds() AABB {
	ext := rl.Vector3{
		X: o.project(worldAxes[0]),
		Y: o.project(worldAxes[1]),
		Z: o.project(worldAxes[2]),
	}
	return AABB{Min: rl.Vector3Subtract(o.Center, ext), Max: rl.Vector3Add(o.Center, ext)}
}

// Penetration runs the separating axis test over the face normals of both
// boxes. On overlap it returns the minimum translation vector pointing from a
// into b; subtracting it from a's position separates the pair. Touching boxes
// do not collide.
func (a OBB) Penetration(b OBB) (rl.Vector3, bool) {
	t := rl.Vector3Subtract(b.Center, a.Center)
	minPenetration := math32.Inf(1)
	var mtv rl.Vector3

	testAxis := func(axis rl.Vector3) bool {
		dist := rl.Vector3DotProduct(t, axis)
		penetration := a.project(axis) + b.project(axis) - math32.Abs(dist)
		if penetration <= 0 {
			return false
		}
		if penetration < minPenetration {
			minPenetration = penetration
			if dist < 0 {
				mtv = rl.Vector3Scale(axis, -penetration)
			} else {
				mtv = rl.Vector3Scale(axis, penetration)
			}
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !testAxis(a.Axes[i]) {
			return rl.Vector3Zero(), false
		}
	}
	for i := 0; i < 3; i++ {
		if !testAxis(b.Axes[i]) {
			return rl.Vector3Zero(), false
		}
	}
	return mtv, true
}
