package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeSphere
	ShapeCylinder
)

func (t ShapeType) String() string {
	switch t {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	}
	return fmt.Sprintf("ShapeType(%d)", int(t))
}

// Shape is a collision primitive owned by exactly one Body. It never moves on
// its own: its world placement is Offset followed by the body's transform.
type Shape struct {
	Offset Transform

	kind   ShapeType
	size   rl.Vector3 // box width, height, depth
	radius float32
	height float32
	body   *Body
}

func NewBox(size rl.Vector3) *Shape {
	return &Shape{kind: ShapeBox, size: size}
}

// NewSphere and NewCylinder build shapes that can be indexed and raycast
// bounds-wise but have no penetration test yet.
func NewSphere(radius float32) *Shape {
	return &Shape{kind: ShapeSphere, radius: radius}
}

func NewCylinder(radius, height float32) *Shape {
	return &Shape{kind: ShapeCylinder, radius: radius, height: height}
}

func (s *Shape) Type() ShapeType { return s.kind }
func (s *Shape) Size() rl.Vector3 { return s.size }
func (s *Shape) Radius() float32 { return s.radius }
func (s *Shape) Height() float32 { return s.height }
func (s *Shape) Body() *Body { return s.body }

func (s *Shape) bodyTransform() Transform {
	if s.body == nil {
		return Transform{}
	}
	return s.body.Transform
}

// extent is the box that encloses the shape in its local frame.
func (s *Shape) extent() rl.Vector3 {
	switch s.kind {
	case ShapeSphere:
		return rl.Vector3{X: 2 * s.radius, Y: 2 * s.radius, Z: 2 * s.radius}
	case ShapeCylinder:
		return rl.Vector3{X: 2 * s.radius, Y: s.height, Z: 2 * s.radius}
	}
	return s.size
}

// WorldOBB places the shape's enclosing box in world space.
func (s *Shape) WorldOBB() OBB {
	return newPlacedOBB(s.extent(), s.Offset, s.bodyTransform())
}

// Bounds is the world AABB of the shape.
func (s *Shape) Bounds() AABB {
	if s.kind == ShapeSphere {
		center := s.bodyTransform().Apply(s.Offset.Position)
		return NewAABBFromCenter(center, s.extent())
	}
	return s.WorldOBB().Bounds()
}

// Penetration tests a against b. The vector points from a into b and its
// length is the overlap depth along the minimum translation axis. A false
// result with a nil error means the pair was checked and does not overlap;
// pairs without a test return ErrUnsupportedPair.
func Penetration(a, b *Shape) (rl.Vector3, bool, error) {
	if a.kind == ShapeBox && b.kind == ShapeBox {
		pen, hit := a.WorldOBB().Penetration(b.WorldOBB())
		return pen, hit, nil
	}
	return rl.Vector3Zero(), false, errors.Wrapf(ErrUnsupportedPair, "%s vs %s", a.kind, b.kind)
}
