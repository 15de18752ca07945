package physics

import (
	"fmt"
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

type BodyType int

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

func (t BodyType) String() string {
	switch t {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

// Moving reports whether bodies of this type change position during a tick.
func (t BodyType) Moving() bool {
	return t == Kinematic || t == Dynamic
}

// Transformable is anything placed by a world transform that can be driven by time.
type Transformable interface {
	Pose() Transform
	UpdateTransform(t time.Duration)
}

// Collidable exposes the geometry a body collides with.
type Collidable interface {
	Type() BodyType
	Shapes() []*Shape
}

// Taggable exposes behaviour modifiers.
type Taggable interface {
	Modifiers() Modifiers
}

var (
	_ Transformable = (*Body)(nil)
	_ Collidable    = (*Body)(nil)
	_ Taggable      = (*Body)(nil)
)

// Releaser is a resource hung on a body by a collaborator, such as a render
// model, freed when the body is cleared.
type Releaser interface {
	Release()
}

var nextBodyID atomic.Uint64

// BodyOptions configures NewBody. Zero bounciness and damping are valid.
type BodyOptions struct {
	Name       string
	Transform  Transform
	Mass       float32 // defaults to 1
	Bounciness float32 // 0 = no bounce, 1 = perfect bounce
	Damping    float32 // friction applied to bodies sliding on this one
	Modifiers  Modifiers
	Motion     Motion // kinematic bodies only
}

type Body struct {
	ID         uint64
	Name       string
	Transform  Transform
	Velocity   rl.Vector3 // units per graphics frame, dynamic bodies only
	Mass       float32
	Bounciness float32
	Damping    float32
	Visual     Releaser

	bodyType  BodyType
	modifiers Modifiers
	motion    Motion
	shapes    []*Shape
	rest      rl.Vector3 // construction position, origin of constraint ranges

	lastTransformTime time.Duration
	isPlayer          bool

	onGround  bool
	colliding bool
	blocked   bool

	handlers []CollisionHandler
}

// NewBody validates the options and builds a body with no shapes.
func NewBody(kind BodyType, opts BodyOptions) (*Body, error) {
	if opts.Motion != nil && kind != Kinematic {
		return nil, errors.Wrapf(ErrMotionNotAllowed, "body %q is %s", opts.Name, kind)
	}
	if err := opts.Modifiers.Validate(); err != nil {
		return nil, errors.Wrapf(err, "body %q", opts.Name)
	}
	mass := opts.Mass
	if mass <= 0 {
		mass = 1
	}
	b := &Body{
		ID:         nextBodyID.Add(1),
		Name:       opts.Name,
		Transform:  opts.Transform,
		Mass:       mass,
		Bounciness: opts.Bounciness,
		Damping:    opts.Damping,
		bodyType:   kind,
		modifiers:  opts.Modifiers,
		motion:     opts.Motion,
		rest:       opts.Transform.Position,
	}
	if b.motion != nil {
		b.UpdateTransform(0)
	}
	return b, nil
}

func (b *Body) Type() BodyType { return b.bodyType }
func (b *Body) Shapes() []*Shape { return b.shapes }
func (b *Body) Modifiers() Modifiers { return b.modifiers }
func (b *Body) Pose() Transform { return b.Transform }
func (b *Body) IsPlayer() bool { return b.isPlayer }
func (b *Body) OnGround() bool { return b.onGround }
func (b *Body) Colliding() bool { return b.colliding }
func (b *Body) Blocked() bool { return b.blocked }
func (b *Body) RestPosition() rl.Vector3 { return b.rest }

// AddShape attaches s to this body. A shape belongs to one body for life.
func (b *Body) AddShape(s *Shape) error {
	if s.body != nil {
		return errors.Wrapf(ErrShapeAttached, "body %q", b.Name)
	}
	s.body = b
	b.shapes = append(b.shapes, s)
	return nil
}

// UpdateTransform moves a kinematic body to where its motion puts it at t.
func (b *Body) UpdateTransform(t time.Duration) {
	if b.motion == nil {
		return
	}
	b.Transform = b.motion.PoseAt(t)
	b.lastTransformTime = t
}

// SwitchState reports which switch end the body sits closer to.
func (b *Body) SwitchState() (SwitchState, bool) {
	sw := b.modifiers.Switch
	if sw == nil {
		return SwitchOff, false
	}
	offset := rl.Vector3Subtract(b.Transform.Position, b.rest)
	if rl.Vector3Distance(offset, sw.On) <= rl.Vector3Distance(offset, sw.Off) {
		return SwitchOn, true
	}
	return SwitchOff, true
}

// AddHandler subscribes h to this body's collision enter/exit events.
func (b *Body) AddHandler(h CollisionHandler) {
	b.handlers = append(b.handlers, h)
}

// Clear releases the body's geometry and visual and detaches its shapes.
func (b *Body) Clear() {
	if b.Visual != nil {
		b.Visual.Release()
		b.Visual = nil
	}
	for _, s := range b.shapes {
		s.body = nil
	}
	b.shapes = nil
	b.handlers = nil
}

func (b *Body) resetFlags() {
	b.onGround = false
	b.colliding = false
	b.blocked = false
}

// applyForces adds gravity and the body's own force, scaled by the speed ratio.
func (b *Body) applyForces(gravity rl.Vector3, speedRatio float32) {
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(gravity, speedRatio))
	if f := b.modifiers.Force; f != nil {
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(*f, speedRatio))
	}
}

// integrate advances a dynamic body by one sub-tick of its per-frame velocity.
func (b *Body) integrate(speedRatio float32, ticksPerFrame int) {
	step := speedRatio / float32(ticksPerFrame)
	b.Transform.Position = rl.Vector3Add(b.Transform.Position, rl.Vector3Scale(b.Velocity, step))
}

// applyConstraint keeps the body on its axis and inside its range.
func (b *Body) applyConstraint() {
	c := b.modifiers.Constraint
	if c == nil {
		return
	}
	along := rl.Vector3DotProduct(b.Velocity, c.Axis)
	b.Velocity = rl.Vector3Scale(c.Axis, along)

	offset := rl.Vector3DotProduct(rl.Vector3Subtract(b.Transform.Position, b.rest), c.Axis)
	if c.Range != nil {
		lo, hi := c.limits()
		switch {
		case offset < lo:
			offset = lo
			if along < 0 {
				b.Velocity = rl.Vector3Zero()
			}
		case offset > hi:
			offset = hi
			if along > 0 {
				b.Velocity = rl.Vector3Zero()
			}
		}
	}
	b.Transform.Position = rl.Vector3Add(b.rest, rl.Vector3Scale(c.Axis, offset))
}
