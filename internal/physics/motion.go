package physics

import (
	"math"
	"sort"
	"time"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// Motion drives a kinematic body from elapsed simulation time.
type Motion interface {
	PoseAt(t time.Duration) Transform
}

// MotionFunc adapts a plain function to Motion.
type MotionFunc func(t time.Duration) Transform

func (f MotionFunc) PoseAt(t time.Duration) Transform { return f(t) }

type Keyframe struct {
	At   time.Duration
	Pose Transform
}

// Keyframes interpolates linearly between poses. With Loop the sequence
// restarts after the last frame, otherwise it holds the last pose.
type Keyframes struct {
	frames []Keyframe
	loop   bool
}

func NewKeyframes(frames []Keyframe, loop bool) (*Keyframes, error) {
	if len(frames) == 0 {
		return nil, errors.New("keyframes: no frames")
	}
	sorted := make([]Keyframe, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	if sorted[0].At < 0 {
		return nil, errors.New("keyframes: negative time")
	}
	return &Keyframes{frames: sorted, loop: loop}, nil
}

func (k *Keyframes) PoseAt(t time.Duration) Transform {
	first, last := k.frames[0], k.frames[len(k.frames)-1]
	if k.loop && last.At > 0 {
		t %= last.At
		if t < 0 {
			t += last.At
		}
	}
	if t <= first.At {
		return first.Pose
	}
	if t >= last.At {
		return last.Pose
	}
	i := sort.Search(len(k.frames), func(i int) bool { return k.frames[i].At > t })
	from, to := k.frames[i-1], k.frames[i]
	amount := float32(t-from.At) / float32(to.At-from.At)
	return from.Pose.Lerp(to.Pose, amount)
}

// Oscillation swings back and forth along Axis around Origin.
type Oscillation struct {
	Origin    Transform
	Axis      rl.Vector3
	Amplitude float32
	Period    time.Duration
	Phase     float32 // radians
}

func (o Oscillation) PoseAt(t time.Duration) Transform {
	pose := o.Origin
	if o.Period <= 0 {
		return pose
	}
	angle := 2*math.Pi*float32(t.Seconds()/o.Period.Seconds()) + o.Phase
	offset := rl.Vector3Scale(rl.Vector3Normalize(o.Axis), o.Amplitude*math32.Sin(angle))
	pose.Position = rl.Vector3Add(pose.Position, offset)
	return pose
}

// Spin rotates in place around Axis.
type Spin struct {
	Origin           Transform
	Axis             rl.Vector3
	DegreesPerSecond float32
}

func (s Spin) PoseAt(t time.Duration) Transform {
	pose := s.Origin
	turn := s.DegreesPerSecond * float32(t.Seconds())
	pose.Rotation = rl.Vector3Add(pose.Rotation, rl.Vector3Scale(rl.Vector3Normalize(s.Axis), turn))
	return pose
}
