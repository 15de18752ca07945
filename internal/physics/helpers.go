package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Sentinel errors returned by the simulation core.
var (
	ErrUnsupportedPair  = errors.New("unsupported shape pair")
	ErrIndexBuilt       = errors.New("spatial index already built")
	ErrIndexNotBuilt    = errors.New("spatial index not built")
	ErrNotStatic        = errors.New("shape does not belong to a static body")
	ErrShapeAttached    = errors.New("shape already attached to a body")
	ErrSwitchIncomplete = errors.New("switch needs a constraint range and a force")
	ErrMotionNotAllowed = errors.New("only kinematic bodies take a motion")
	ErrWorldDisposed    = errors.New("world disposed")
	ErrBufferSize       = errors.New("position buffer has wrong size")
)

const epsilon = 1e-6

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sign mirrors the usual -1/0/1 convention, so zero never agrees with a non-zero sign.
func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// agreeing keeps v only when it points the same way as ref.
func agreeing(v, ref float32) float32 {
	if sign(v) != sign(ref) {
		return 0
	}
	return v
}

func isZero(v rl.Vector3) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func vec(a [3]float32) rl.Vector3 {
	return rl.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

// Vec converts a plain triple, as found in level and config files, to a vector.
func Vec(a [3]float32) rl.Vector3 {
	return vec(a)
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func vector3Min(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y), Z: math32.Min(a.Z, b.Z)}
}

func vector3Max(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y), Z: math32.Max(a.Z, b.Z)}
}
