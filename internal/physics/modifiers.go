package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Range bounds motion along a constraint axis. Min and Max are offsets from
// the body's rest position, already scaled along the axis.
type Range struct {
	Min rl.Vector3
	Max rl.Vector3
}

// Constraint restricts a dynamic body to slide along Axis. A range can only
// exist inside a constraint.
type Constraint struct {
	Axis  rl.Vector3 // unit length
	Range *Range
}

func NewConstraint(axis rl.Vector3) Constraint {
	return Constraint{Axis: rl.Vector3Normalize(axis)}
}

// WithRange returns a copy of c limited to [lo, hi] along its axis.
func (c Constraint) WithRange(lo, hi float32) Constraint {
	c.Range = &Range{
		Min: rl.Vector3Scale(c.Axis, lo),
		Max: rl.Vector3Scale(c.Axis, hi),
	}
	return c
}

// limits returns the range as scalar offsets along the axis, low first.
func (c Constraint) limits() (float32, float32) {
	lo := rl.Vector3DotProduct(c.Range.Min, c.Axis)
	hi := rl.Vector3DotProduct(c.Range.Max, c.Axis)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Switch is a two-position body. On is the range end the force pushes toward.
type Switch struct {
	On  rl.Vector3
	Off rl.Vector3
}

type SwitchState int

const (
	SwitchOff SwitchState = iota
	SwitchOn
)

func (s SwitchState) String() string {
	if s == SwitchOn {
		return "on"
	}
	return "off"
}

// NewSwitch orders the range ends of c by their distance to force.
func NewSwitch(c Constraint, force rl.Vector3) (*Switch, error) {
	if c.Range == nil {
		return nil, ErrSwitchIncomplete
	}
	a, b := c.Range.Min, c.Range.Max
	if rl.Vector3Distance(b, force) < rl.Vector3Distance(a, force) {
		a, b = b, a
	}
	return &Switch{On: a, Off: b}, nil
}

// Modifiers is the closed set of behaviours a body can carry.
type Modifiers struct {
	Blocking   bool // stops whatever touches it
	Empty      bool // sensor: reports contacts, never pushes
	Constraint *Constraint
	Force      *rl.Vector3 // added to velocity every sub-tick, like gravity
	Switch     *Switch
}

// Validate checks the cross-field rules Go types cannot express.
func (m Modifiers) Validate() error {
	if m.Switch == nil {
		return nil
	}
	if m.Constraint == nil || m.Constraint.Range == nil || m.Force == nil {
		return ErrSwitchIncomplete
	}
	return nil
}
