package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RaycastHit struct {
	Body     *Body
	Shape    *Shape
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// Raycast checks the ray against every shape in the world and returns the
// closest hit. Spheres are tested exactly; cylinders use their enclosing box.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	direction = rl.Vector3Normalize(direction)
	var closestHit RaycastHit
	closestHit.Distance = maxDistance
	hit := false

	for _, b := range w.bodies {
		for _, s := range b.shapes {
			var hitInfo RaycastHit
			var ok bool
			if s.kind == ShapeSphere {
				hitInfo, ok = raycastSphere(origin, direction, s, maxDistance)
			} else {
				hitInfo, ok = raycastOBB(origin, direction, s.WorldOBB(), maxDistance)
			}
			if ok && hitInfo.Distance < closestHit.Distance {
				closestHit = hitInfo
				closestHit.Body = b
				closestHit.Shape = s
				hit = true
			}
		}
	}

	return closestHit, hit
}

// raycastOBB runs the slab test in the box's local frame.
func raycastOBB(origin, direction rl.Vector3, box OBB, maxDistance float32) (RaycastHit, bool) {
	rel := rl.Vector3Subtract(origin, box.Center)
	half := [3]float32{box.HalfSize.X, box.HalfSize.Y, box.HalfSize.Z}

	tmin, tmax := math32.Inf(-1), math32.Inf(1)
	hitAxis, hitSide := 0, float32(-1)

	for i := 0; i < 3; i++ {
		o := rl.Vector3DotProduct(rel, box.Axes[i])
		d := rl.Vector3DotProduct(direction, box.Axes[i])
		if math32.Abs(d) < epsilon {
			// Parallel to this slab
			if o < -half[i] || o > half[i] {
				return RaycastHit{}, false
			}
			continue
		}
		t1 := (-half[i] - o) / d
		t2 := (half[i] - o) / d
		side := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			side = 1
		}
		if t1 > tmin {
			tmin = t1
			hitAxis, hitSide = i, side
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RaycastHit{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return RaycastHit{}, false
	}

	t := tmin
	normal := rl.Vector3Scale(box.Axes[hitAxis], hitSide)
	if t < 0 {
		// Origin inside the box: report the exit point
		t = tmax
		normal = rl.Vector3Negate(normal)
	}
	if t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}

func raycastSphere(origin, direction rl.Vector3, s *Shape, maxDistance float32) (RaycastHit, bool) {
	center := s.bodyTransform().Apply(s.Offset.Position)
	radius := s.radius

	oc := rl.Vector3Subtract(origin, center)
	a := rl.Vector3DotProduct(direction, direction)
	b := 2.0 * rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return RaycastHit{}, false
	}

	t := (-b - math32.Sqrt(discriminant)) / (2 * a)
	if t < 0 {
		t = (-b + math32.Sqrt(discriminant)) / (2 * a)
	}
	if t < 0 || t > maxDistance {
		return RaycastHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))

	return RaycastHit{Point: point, Normal: normal, Distance: t}, true
}
