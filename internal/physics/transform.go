package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform places a body in the world, or a shape relative to its body.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
}

// Quaternion converts the Euler rotation.
func (t Transform) Quaternion() rl.Quaternion {
	return rl.QuaternionFromEuler(t.Rotation.X*rl.Deg2rad, t.Rotation.Y*rl.Deg2rad, t.Rotation.Z*rl.Deg2rad)
}

// Rotate applies only the rotation part to a local direction.
func (t Transform) Rotate(local rl.Vector3) rl.Vector3 {
	if isZero(t.Rotation) {
		return local
	}
	return rl.Vector3RotateByQuaternion(local, t.Quaternion())
}

// Apply maps a local point to the parent space.
func (t Transform) Apply(local rl.Vector3) rl.Vector3 {
	return rl.Vector3Add(t.Position, t.Rotate(local))
}

// Up is the local +Y axis in parent space.
func (t Transform) Up() rl.Vector3 {
	return t.Rotate(rl.Vector3{X: 0, Y: 1, Z: 0})
}

// Lerp blends two transforms component-wise. Rotation is blended in Euler space,
// which is fine for the small keyframe deltas levels use.
func (t Transform) Lerp(to Transform, amount float32) Transform {
	return Transform{
		Position: rl.Vector3Lerp(t.Position, to.Position, amount),
		Rotation: rl.Vector3Lerp(t.Rotation, to.Rotation, amount),
	}
}
