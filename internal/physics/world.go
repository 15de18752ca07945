package physics

import (
	"log"
	"math"
	"physcore/internal/config"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// StepStats describes what one Step did.
type StepStats struct {
	Ticks        int
	SubTickDelta time.Duration
	SpeedRatio   float32
	Contacts     int // shape pairs found overlapping, summed over sub-ticks
	Unsupported  int // shape pairs skipped for lack of a penetration test
}

// World owns the bodies of one level and advances them in fixed sub-ticks.
// It is not safe for concurrent use; one goroutine drives Step.
type World struct {
	cfg     config.Physics
	gravity rl.Vector3
	nominal time.Duration

	bodies []*Body
	moving []*Body // kinematic and dynamic, in body order
	player *Body
	index  *SpatialIndex

	contacts *contacts
	elapsed  time.Duration
	disposed bool
}

// NewWorld registers every static shape in a fresh spatial index and builds it.
// A player that is not already among bodies is appended.
func NewWorld(cfg config.Physics, bodies []*Body, player *Body) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "new world")
	}
	w := &World{
		cfg:      cfg,
		gravity:  Vec(cfg.Gravity),
		nominal:  cfg.SubTickDuration(),
		index:    NewSpatialIndex(),
		contacts: newContacts(),
		bodies:   make([]*Body, 0, len(bodies)+1),
	}
	w.bodies = append(w.bodies, bodies...)

	if player != nil {
		player.isPlayer = true
		found := false
		for _, b := range w.bodies {
			if b == player {
				found = true
				break
			}
		}
		if !found {
			w.bodies = append(w.bodies, player)
		}
		w.player = player
	}

	for _, b := range w.bodies {
		if b.bodyType.Moving() {
			w.moving = append(w.moving, b)
			continue
		}
		for _, s := range b.shapes {
			if err := w.index.Insert(s); err != nil {
				return nil, errors.Wrapf(err, "body %q", b.Name)
			}
		}
	}
	if err := w.index.Build(); err != nil {
		return nil, errors.Wrap(err, "new world")
	}

	log.Printf("Physics: world ready (%d bodies, %d moving, %d static shapes indexed)",
		len(w.bodies), len(w.moving), w.index.Len())
	return w, nil
}

func (w *World) Bodies() []*Body { return w.bodies }
func (w *World) Player() *Body { return w.player }
func (w *World) Index() *SpatialIndex { return w.index }
func (w *World) Elapsed() time.Duration { return w.elapsed }
func (w *World) Disposed() bool { return w.disposed }
func (w *World) Config() config.Physics { return w.cfg }

// Find returns the first body with the given name.
func (w *World) Find(name string) *Body {
	for _, b := range w.bodies {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// TicksFor returns how many sub-ticks a frame of length delta runs: the
// nominal count scaled by delta, bounded by MaxTicksPerFrame.
func (w *World) TicksFor(delta time.Duration) int {
	frames := float64(delta) / float64(w.cfg.FrameDuration)
	ticks := int(math.Round(frames * float64(w.cfg.TicksPerFrame)))
	return clamp(ticks, 0, w.cfg.MaxTicksPerFrame)
}

// Step advances the simulation by one render frame of length delta. Each
// sub-tick receives delta divided by the number of sub-ticks actually run.
// Collision callbacks fire once, after the last sub-tick. A delta too short
// for a single sub-tick leaves the world and its flags untouched.
func (w *World) Step(delta time.Duration) (StepStats, error) {
	if w.disposed {
		return StepStats{}, ErrWorldDisposed
	}
	stats := StepStats{Ticks: w.TicksFor(delta)}
	if stats.Ticks == 0 {
		return stats, nil
	}
	for _, b := range w.bodies {
		b.resetFlags()
	}
	stats.SubTickDelta = delta / time.Duration(stats.Ticks)
	stats.SpeedRatio = clamp(float32(stats.SubTickDelta)/float32(w.nominal), 0, w.cfg.MaxSpeedRatio)

	tc := tick{
		speedRatio:    stats.SpeedRatio,
		ticksPerFrame: w.cfg.TicksPerFrame,
		nominal:       w.nominal,
		stats:         &stats,
	}
	for i := 0; i < stats.Ticks; i++ {
		if err := w.subTick(stats.SubTickDelta, tc); err != nil {
			return stats, err
		}
	}

	w.dispatchCollisionCallbacks()
	return stats, nil
}

func (w *World) subTick(sub time.Duration, tc tick) error {
	w.elapsed += sub

	for _, b := range w.moving {
		switch b.bodyType {
		case Dynamic:
			b.applyForces(w.gravity, tc.speedRatio)
			b.applyConstraint()
			b.integrate(tc.speedRatio, tc.ticksPerFrame)
		case Kinematic:
			b.UpdateTransform(w.elapsed)
		}
	}

	for i, b := range w.moving {
		if err := b.collideAgainstStatic(w, tc); err != nil {
			return err
		}
		for j, other := range w.moving {
			if i == j {
				continue
			}
			// Dynamic pairs resolve both sides at once
			if j < i && b.bodyType == Dynamic && other.bodyType == Dynamic {
				continue
			}
			b.collideAgainstBody(other, w, tc)
		}
	}
	return nil
}

// WritePositions fills dst with x, y, z for every body in Bodies order.
func (w *World) WritePositions(dst []float32) error {
	if len(dst) != 3*len(w.bodies) {
		return errors.Wrapf(ErrBufferSize, "got %d floats for %d bodies", len(dst), len(w.bodies))
	}
	for i, b := range w.bodies {
		p := b.Transform.Position
		dst[3*i], dst[3*i+1], dst[3*i+2] = p.X, p.Y, p.Z
	}
	return nil
}

// Dispose releases every body and drops the index. Later Steps fail with
// ErrWorldDisposed.
func (w *World) Dispose() {
	if w.disposed {
		return
	}
	for _, b := range w.bodies {
		b.Clear()
	}
	w.index = nil
	w.moving = nil
	w.disposed = true
	log.Printf("Physics: world disposed (%d bodies released)", len(w.bodies))
}
