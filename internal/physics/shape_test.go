package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

func boxAt(pos, size rl.Vector3) *Shape {
	s := NewBox(size)
	s.Offset.Position = pos
	return s
}

func TestPenetrationAxisAligned(t *testing.T) {
	a := boxAt(rl.Vector3{Y: 0.8}, unitSize())
	b := boxAt(rl.Vector3{}, unitSize())

	pen, hit, err := Penetration(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !hit {
		t.Fatal("Expected overlapping boxes to collide")
	}
	if !nearVec(pen, rl.Vector3{Y: -0.2}) {
		t.Errorf("Expected penetration (0,-0.2,0), got %v", pen)
	}
	if !near(rl.Vector3Length(pen), 0.2) {
		t.Errorf("Expected depth 0.2, got %f", rl.Vector3Length(pen))
	}
}

func TestPenetrationPicksLeastOverlap(t *testing.T) {
	a := boxAt(rl.Vector3{X: 0.9, Y: 0.3}, unitSize())
	b := boxAt(rl.Vector3{}, unitSize())

	pen, hit, _ := Penetration(a, b)
	if !hit {
		t.Fatal("Expected collision")
	}
	// x overlap 0.1, y overlap 0.7
	if !nearVec(pen, rl.Vector3{X: -0.1}) {
		t.Errorf("Expected penetration (-0.1,0,0), got %v", pen)
	}
}

func TestPenetrationSeparated(t *testing.T) {
	a := boxAt(rl.Vector3{X: 2}, unitSize())
	b := boxAt(rl.Vector3{}, unitSize())

	_, hit, err := Penetration(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hit {
		t.Error("Separated boxes should not collide")
	}
}

func TestPenetrationTouchingIsNotCollision(t *testing.T) {
	a := boxAt(rl.Vector3{X: 1}, unitSize())
	b := boxAt(rl.Vector3{}, unitSize())

	if _, hit, _ := Penetration(a, b); hit {
		t.Error("Touching boxes should not collide")
	}
}

func TestPenetrationRotatedBox(t *testing.T) {
	a := boxAt(rl.Vector3{}, unitSize())
	a.Offset.Rotation = rl.Vector3{Y: 45}
	b := boxAt(rl.Vector3{X: 1.2}, unitSize())

	pen, hit, _ := Penetration(a, b)
	if !hit {
		t.Fatal("Expected the rotated corner to reach the second box")
	}
	if pen.X <= 0 || pen.X > 0.01 {
		t.Errorf("Expected a small +X penetration, got %v", pen)
	}

	// Unrotated it would not reach
	a.Offset.Rotation = rl.Vector3{}
	if _, hit, _ := Penetration(a, b); hit {
		t.Error("Unrotated boxes 1.2 apart should not collide")
	}
}

func TestPenetrationUnsupportedPair(t *testing.T) {
	a := NewSphere(1)
	b := boxAt(rl.Vector3{}, unitSize())

	_, hit, err := Penetration(a, b)
	if !errors.Is(err, ErrUnsupportedPair) {
		t.Errorf("Expected ErrUnsupportedPair, got %v", err)
	}
	if hit {
		t.Error("Unsupported pair must not report a hit")
	}

	_, _, err = Penetration(b, NewCylinder(1, 2))
	if !errors.Is(err, ErrUnsupportedPair) {
		t.Errorf("Expected ErrUnsupportedPair for box vs cylinder, got %v", err)
	}
}

func TestShapeFollowsBody(t *testing.T) {
	b := newBoxBody(t, Dynamic, rl.Vector3{X: 3}, unitSize(), BodyOptions{})
	s := b.Shapes()[0]
	s.Offset.Position = rl.Vector3{Y: 1}

	bounds := s.Bounds()
	if !nearVec(bounds.Center(), rl.Vector3{X: 3, Y: 1}) {
		t.Errorf("Expected bounds centered at (3,1,0), got %v", bounds.Center())
	}

	b.Transform.Position.X = 5
	if !nearVec(s.Bounds().Center(), rl.Vector3{X: 5, Y: 1}) {
		t.Errorf("Expected bounds to follow body to x=5, got %v", s.Bounds().Center())
	}
}

func TestShapeAttachedOnce(t *testing.T) {
	a := newBoxBody(t, Static, rl.Vector3{}, unitSize(), BodyOptions{Name: "a"})
	b, _ := NewBody(Static, BodyOptions{Name: "b"})

	if err := b.AddShape(a.Shapes()[0]); !errors.Is(err, ErrShapeAttached) {
		t.Errorf("Expected ErrShapeAttached, got %v", err)
	}
}

func TestSphereBounds(t *testing.T) {
	s := NewSphere(2)
	s.Offset.Position = rl.Vector3{X: 1}

	bounds := s.Bounds()
	if !nearVec(bounds.Min, rl.Vector3{X: -1, Y: -2, Z: -2}) || !nearVec(bounds.Max, rl.Vector3{X: 3, Y: 2, Z: 2}) {
		t.Errorf("Unexpected sphere bounds %v", bounds)
	}
}
