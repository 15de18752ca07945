package physics

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

func pose(x, y, z float32) Transform {
	return Transform{Position: rl.Vector3{X: x, Y: y, Z: z}}
}

func TestKeyframesInterpolate(t *testing.T) {
	k, err := NewKeyframes([]Keyframe{
		{At: 2 * time.Second, Pose: pose(0, 4, 0)},
		{At: 0, Pose: pose(0, 0, 0)},
	}, false)
	if err != nil {
		t.Fatalf("NewKeyframes failed: %v", err)
	}

	if p := k.PoseAt(time.Second); !nearVec(p.Position, rl.Vector3{Y: 2}) {
		t.Errorf("Expected midpoint (0,2,0), got %v", p.Position)
	}
	if p := k.PoseAt(5 * time.Second); !nearVec(p.Position, rl.Vector3{Y: 4}) {
		t.Errorf("Expected last pose held, got %v", p.Position)
	}
}

func TestKeyframesLoop(t *testing.T) {
	k, _ := NewKeyframes([]Keyframe{
		{At: 0, Pose: pose(0, 0, 0)},
		{At: time.Second, Pose: pose(10, 0, 0)},
	}, true)

	if p := k.PoseAt(2500 * time.Millisecond); !nearVec(p.Position, rl.Vector3{X: 5}) {
		t.Errorf("Expected looped pose (5,0,0), got %v", p.Position)
	}
}

func TestKeyframesRejectEmpty(t *testing.T) {
	if _, err := NewKeyframes(nil, false); err == nil {
		t.Error("Expected error for empty keyframes")
	}
}

func TestOscillation(t *testing.T) {
	o := Oscillation{Origin: pose(1, 0, 0), Axis: rl.Vector3{Z: 3}, Amplitude: 2, Period: 4 * time.Second}

	if p := o.PoseAt(time.Second); !nearVec(p.Position, rl.Vector3{X: 1, Z: 2}) {
		t.Errorf("Expected (1,0,2) at a quarter period, got %v", p.Position)
	}
	if p := o.PoseAt(2 * time.Second); !nearVec(p.Position, rl.Vector3{X: 1}) {
		t.Errorf("Expected origin at half period, got %v", p.Position)
	}
}

func TestSpin(t *testing.T) {
	s := Spin{Axis: rl.Vector3{Y: 1}, DegreesPerSecond: 90}

	if p := s.PoseAt(2 * time.Second); !nearVec(p.Rotation, rl.Vector3{Y: 180}) {
		t.Errorf("Expected rotation (0,180,0), got %v", p.Rotation)
	}
}

func TestMotionOnlyForKinematic(t *testing.T) {
	motion := MotionFunc(func(time.Duration) Transform { return Transform{} })

	if _, err := NewBody(Dynamic, BodyOptions{Motion: motion}); !errors.Is(err, ErrMotionNotAllowed) {
		t.Errorf("Expected ErrMotionNotAllowed for dynamic body, got %v", err)
	}
	if _, err := NewBody(Static, BodyOptions{Motion: motion}); !errors.Is(err, ErrMotionNotAllowed) {
		t.Errorf("Expected ErrMotionNotAllowed for static body, got %v", err)
	}
	if _, err := NewBody(Kinematic, BodyOptions{Motion: motion}); err != nil {
		t.Errorf("Kinematic body rejected motion: %v", err)
	}
}

func TestUpdateTransformWithoutMotion(t *testing.T) {
	b, _ := NewBody(Kinematic, BodyOptions{Transform: pose(1, 2, 3)})
	b.UpdateTransform(time.Second)

	if b.Transform != pose(1, 2, 3) {
		t.Errorf("Expected transform unchanged, got %v", b.Transform)
	}
}

func TestTransformRotate(t *testing.T) {
	tr := Transform{Rotation: rl.Vector3{Y: 90}}
	got := tr.Rotate(rl.Vector3{X: 1})
	if !nearVec(got, rl.Vector3{Z: -1}) {
		t.Errorf("Expected +X rotated 90 degrees about Y to be -Z, got %v", got)
	}
	if up := tr.Up(); !nearVec(up, rl.Vector3{Y: 1}) {
		t.Errorf("Expected up unchanged by a yaw, got %v", up)
	}
}
