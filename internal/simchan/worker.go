package simchan

import (
	"context"
	"physcore/internal/config"
	"physcore/internal/level"
	"physcore/internal/physics"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// Stepper advances a private world by one frame and writes the result into
// the buffers it is handed.
type Stepper interface {
	Step(delta time.Duration, positions []float32, flags []Flags) (physics.StepStats, error)
	// Seed moves dynamic bodies to the given positions, used when a fresh
	// world takes over from a lost one.
	Seed(positions []float32)
	Close()
}

// WorldStepper is the Stepper backed by a physics.World.
type WorldStepper struct {
	world *physics.World
}

// NewWorldStepper builds a world from its own deep copy of desc, so the
// caller's description is never shared with the stepping goroutine.
func NewWorldStepper(desc *level.Description, cfg config.Physics) (*WorldStepper, error) {
	private, err := level.Clone(desc)
	if err != nil {
		return nil, err
	}
	w, err := level.Build(private, cfg)
	if err != nil {
		return nil, err
	}
	return &WorldStepper{world: w}, nil
}

func (s *WorldStepper) World() *physics.World { return s.world }

func (s *WorldStepper) Step(delta time.Duration, positions []float32, flags []Flags) (physics.StepStats, error) {
	bodies := s.world.Bodies()
	if len(flags) != len(bodies) {
		return physics.StepStats{}, errors.Wrapf(ErrBufferSize, "%d flags for %d bodies", len(flags), len(bodies))
	}
	stats, err := s.world.Step(delta)
	if err != nil {
		return stats, err
	}
	if err := s.world.WritePositions(positions); err != nil {
		return stats, err
	}
	for i, b := range bodies {
		flags[i] = FlagsOf(b)
	}
	return stats, nil
}

func (s *WorldStepper) Seed(positions []float32) {
	for i, b := range s.world.Bodies() {
		if b.Type() != physics.Dynamic || 3*i+2 >= len(positions) {
			continue
		}
		b.Transform.Position = rl.Vector3{X: positions[3*i], Y: positions[3*i+1], Z: positions[3*i+2]}
	}
}

func (s *WorldStepper) Close() {
	s.world.Dispose()
}

// serve answers step requests until ctx is cancelled or requests is closed.
// The stepper is closed on the way out.
func serve(ctx context.Context, stepper Stepper, requests <-chan StepRequest, responses chan<- StepResponse) {
	defer stepper.Close()
	for {
		var req StepRequest
		var ok bool
		select {
		case <-ctx.Done():
			return
		case req, ok = <-requests:
			if !ok {
				return
			}
		}

		stats, err := stepper.Step(req.Delta, req.Positions, req.Flags)
		resp := StepResponse{
			Seq:       req.Seq,
			Positions: req.Positions,
			Flags:     req.Flags,
			Stats:     stats,
			Err:       err,
		}
		req.Positions, req.Flags = nil, nil

		select {
		case responses <- resp:
		case <-ctx.Done():
			return
		}
	}
}

// link is the driver's handle on one running worker goroutine.
type link struct {
	requests  chan StepRequest
	responses chan StepResponse
	cancel    context.CancelFunc
	done      chan struct{}
}

func startWorker(parent context.Context, stepper Stepper) *link {
	ctx, cancel := context.WithCancel(parent)
	l := &link{
		requests:  make(chan StepRequest, 1),
		responses: make(chan StepResponse, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go func() {
		defer close(l.done)
		serve(ctx, stepper, l.requests, l.responses)
	}()
	return l
}

// abandon stops feeding the worker. A step already running cannot be
// interrupted; the goroutine exits once it returns.
func (l *link) abandon() {
	l.cancel()
}
