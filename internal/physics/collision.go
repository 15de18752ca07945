package physics

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// tick carries the per-sub-tick values collision resolution needs.
type tick struct {
	speedRatio    float32
	ticksPerFrame int
	nominal       time.Duration // nominal sub-tick duration
	stats         *StepStats
}

// penetrate runs the shape test and counts pairs that have no test.
func (tc tick) penetrate(a, b *Shape) (rl.Vector3, bool) {
	pen, hit, err := Penetration(a, b)
	if err != nil {
		if errors.Is(err, ErrUnsupportedPair) && tc.stats != nil {
			tc.stats.Unsupported++
		}
		return pen, false
	}
	if hit && tc.stats != nil {
		tc.stats.Contacts++
	}
	return pen, hit
}

// collideAgainstStatic resolves this body against the static geometry the
// spatial index reports near each of its shapes.
func (b *Body) collideAgainstStatic(w *World, tc tick) error {
	for _, shape := range b.shapes {
		neighbors, err := w.index.Query(shape)
		if err != nil {
			return errors.Wrapf(err, "body %q", b.Name)
		}
		for _, neighbor := range neighbors {
			pen, hit := tc.penetrate(shape, neighbor)
			if !hit {
				continue
			}
			collider := neighbor.body
			w.recordCollision(b, collider)
			b.touch(pen)
			if b.bodyType == Dynamic && !collider.modifiers.Empty {
				b.resolvePenetration(pen, collider.Damping, tc.speedRatio, tc.ticksPerFrame)
			}
			b.applyBlocking(collider)
		}
	}
	return nil
}

// collideAgainstBody brute-forces every shape pair against another moving
// body. Dynamic pairs are split evenly between both bodies, so the world
// calls this once per dynamic pair.
func (b *Body) collideAgainstBody(collider *Body, w *World, tc tick) {
	for _, shape := range b.shapes {
		for _, colliderShape := range collider.shapes {
			pen, hit := tc.penetrate(shape, colliderShape)
			if !hit {
				continue
			}
			w.recordCollision(b, collider)
			b.touch(pen)

			switch {
			case b.bodyType != Dynamic:
				// Kinematic bodies follow their motion and only report contacts
			case collider.bodyType == Dynamic:
				mirrored := rl.Vector3Negate(pen)
				collider.touch(mirrored)
				if !b.modifiers.Empty && !collider.modifiers.Empty {
					half := rl.Vector3Scale(pen, 0.5)
					collider.resolvePenetration(rl.Vector3Scale(mirrored, 0.5), b.Damping, tc.speedRatio, tc.ticksPerFrame)
					b.resolvePenetration(half, collider.Damping, tc.speedRatio, tc.ticksPerFrame)
				}
				collider.applyBlocking(b)
			case !collider.modifiers.Empty:
				if collider.bodyType == Kinematic {
					b.trackKinematic(shape, colliderShape, collider, pen, tc)
				}
				b.resolvePenetration(pen, collider.Damping, tc.speedRatio, tc.ticksPerFrame)
			}
			b.applyBlocking(collider)
		}
	}
}

// trackKinematic nudges the body's velocity toward the collider's implied
// motion. The collider is stepped one nominal sub-tick ahead, the change in
// penetration gives its velocity, and components that would fight the body's
// own motion are dropped. The collider's transform is restored afterwards.
func (b *Body) trackKinematic(shape, colliderShape *Shape, collider *Body, pen rl.Vector3, tc tick) {
	saved, savedTime := collider.Transform, collider.lastTransformTime
	collider.UpdateTransform(savedTime + tc.nominal)
	ahead, hit, err := Penetration(shape, colliderShape)
	collider.Transform, collider.lastTransformTime = saved, savedTime
	if err != nil || !hit {
		return
	}

	implied := rl.Vector3Scale(rl.Vector3Subtract(ahead, pen), float32(tc.ticksPerFrame))
	implied = rl.Vector3Subtract(implied, b.Velocity)
	implied.X = agreeing(implied.X, b.Velocity.X)
	implied.Y = agreeing(implied.Y, b.Velocity.Y)
	implied.Z = agreeing(implied.Z, b.Velocity.Z)
	b.Velocity = rl.Vector3Subtract(b.Velocity, implied)
}

// touch sets the contact flags for a penetration pointing from b into something.
func (b *Body) touch(pen rl.Vector3) {
	b.colliding = true
	if b.isPlayer && rl.Vector3DotProduct(pen, b.Transform.Up()) < 0 {
		b.onGround = true
	}
}

func (b *Body) applyBlocking(collider *Body) {
	if collider.modifiers.Blocking {
		b.Velocity = rl.Vector3Zero()
		b.blocked = true
	}
}

// resolvePenetration pushes the body out along pen, then bounces its velocity
// off the contact normal unless it is already moving away. Bounciness keeps
// part of the reflected normal component; colliderDamping bleeds speed in
// proportion to the share of a frame this sub-tick covers.
func (b *Body) resolvePenetration(pen rl.Vector3, colliderDamping, speedRatio float32, ticksPerFrame int) {
	b.Transform.Position = rl.Vector3Subtract(b.Transform.Position, pen)

	depth := rl.Vector3Length(pen)
	if depth < epsilon {
		return
	}
	normal := rl.Vector3Scale(pen, -1/depth)

	if rl.Vector3DotProduct(b.Velocity, normal) >= 0 {
		return
	}

	alongNormal := rl.Vector3Scale(normal, rl.Vector3DotProduct(b.Velocity, normal))
	b.Velocity = rl.Vector3Reflect(b.Velocity, normal)
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(alongNormal, 1-b.Bounciness))

	ratio := speedRatio / float32(ticksPerFrame)
	b.Velocity = rl.Vector3Scale(b.Velocity, 1-colliderDamping*ratio)
}
