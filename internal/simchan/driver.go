package simchan

import (
	"context"
	"log"
	"physcore/internal/config"
	"physcore/internal/level"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

const (
	ModeWorker = "worker"
	ModeLocal  = "local"
)

type Options struct {
	Clock    Clock    // nil uses wall time
	Observer Observer // called on the driver goroutine after each frame
	// Spawn builds the stepper for every new worker and for the local
	// fallback. Nil builds a WorldStepper from the level.
	Spawn func() (Stepper, error)
}

// Driver keeps the authoritative world on a worker goroutine and mirrors its
// positions. Only one step is ever in flight, and the position buffer lives
// on exactly one side at a time.
type Driver struct {
	cfg      config.Config
	clock    Clock
	observer Observer
	spawn    func() (Stepper, error)

	mirror    *Mirror
	positions []float32 // nil while the worker holds it
	flags     []Flags
	seq       uint64

	link  *link   // nil once fallen back
	local Stepper // set once fallen back

	mode     atomic.Value
	restarts atomic.Int32

	closed    chan struct{}
	closeOnce sync.Once
}

// NewDriver validates the level on the caller's side so a bad level fails
// here, not on the worker.
func NewDriver(desc *level.Description, cfg config.Config, opts Options) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "new driver")
	}
	if err := level.Validate(desc, cfg.Physics); err != nil {
		return nil, errors.Wrap(err, "new driver")
	}

	d := &Driver{
		cfg:      cfg,
		clock:    opts.Clock,
		observer: opts.Observer,
		spawn:    opts.Spawn,
		mirror:   NewMirror(desc),
		closed:   make(chan struct{}),
	}
	if d.clock == nil {
		d.clock = realClock{}
	}
	if d.spawn == nil {
		private, err := level.Clone(desc)
		if err != nil {
			return nil, err
		}
		d.spawn = func() (Stepper, error) {
			return NewWorldStepper(private, cfg.Physics)
		}
	}

	n := d.mirror.Len()
	d.positions = make([]float32, 3*n)
	d.flags = make([]Flags, n)
	d.mode.Store(ModeWorker)
	return d, nil
}

func (d *Driver) Mirror() *Mirror { return d.mirror }

// Mode reports whether frames currently come from a worker or the local fallback.
func (d *Driver) Mode() string { return d.mode.Load().(string) }

func (d *Driver) Restarts() int { return int(d.restarts.Load()) }

// Close stops the driver from issuing further requests. A request already in
// flight is abandoned, not aborted.
func (d *Driver) Close() {
	d.closeOnce.Do(func() { close(d.closed) })
}

// Run drives frames until ctx is done or Close is called. It returns nil on
// a requested stop and an error if the world or the recovery path fails.
func (d *Driver) Run(ctx context.Context) error {
	select {
	case <-d.closed:
		return ErrChannelClosed
	default:
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-d.closed:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer d.shutdown()

	if err := d.startWorker(ctx); err != nil {
		return err
	}
	log.Printf("Channel: driving %d bodies, target frame %v", d.mirror.Len(), d.cfg.Channel.TargetFrame)

	target := d.cfg.Channel.TargetFrame
	delta := target
	last := d.clock.Now()
	for {
		start := d.clock.Now()
		if d.seq > 0 {
			delta = start.Sub(last)
		}
		last = start

		resp, err := d.roundTrip(ctx, delta)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		d.mirror.apply(resp.Seq, d.positions, d.flags)
		d.notify(resp)

		wait := PacingDelay(target, d.clock.Now().Sub(start))
		select {
		case <-ctx.Done():
			return nil
		case <-d.clock.After(wait):
		}
	}
}

// roundTrip produces one frame, recovering from a lost worker by retrying
// the same frame on whatever replaces it.
func (d *Driver) roundTrip(ctx context.Context, delta time.Duration) (StepResponse, error) {
	d.seq++
	for {
		if d.link == nil {
			stats, err := d.local.Step(delta, d.positions, d.flags)
			return StepResponse{Seq: d.seq, Stats: stats, Err: err}, err
		}

		resp, err := d.exchange(ctx, delta)
		if !errors.Is(err, ErrRoundTripTimeout) {
			return resp, err
		}
		if err := d.recover(ctx, err); err != nil {
			return StepResponse{}, err
		}
	}
}

// exchange hands the buffers to the worker and waits for them to come back.
func (d *Driver) exchange(ctx context.Context, delta time.Duration) (StepResponse, error) {
	req := StepRequest{Seq: d.seq, Delta: delta, Positions: d.positions, Flags: d.flags}
	d.positions, d.flags = nil, nil

	select {
	case d.link.requests <- req:
	case <-ctx.Done():
		return StepResponse{}, ctx.Err()
	}

	timer := time.NewTimer(d.cfg.Channel.Timeout)
	defer timer.Stop()
	select {
	case resp := <-d.link.responses:
		d.positions, d.flags = resp.Positions, resp.Flags
		return resp, resp.Err
	case <-timer.C:
		return StepResponse{}, errors.Wrapf(ErrRoundTripTimeout, "seq %d after %v", req.Seq, d.cfg.Channel.Timeout)
	case <-ctx.Done():
		return StepResponse{}, ctx.Err()
	}
}

// recover replaces a worker whose round trip was lost. The old buffers stay
// with the old worker; fresh ones start from the last mirrored positions.
func (d *Driver) recover(ctx context.Context, cause error) error {
	d.link.abandon()
	d.link = nil
	d.positions = d.mirror.positions()
	d.flags = make([]Flags, d.mirror.Len())

	if d.cfg.Channel.Recovery == config.RecoveryRestart && d.Restarts() < d.cfg.Channel.MaxRestarts {
		n := d.restarts.Add(1)
		log.Printf("Channel: %v, restarting worker (%d/%d)", cause, n, d.cfg.Channel.MaxRestarts)
		return d.startWorker(ctx)
	}

	log.Printf("Channel: %v, falling back to local stepping", cause)
	stepper, err := d.spawn()
	if err != nil {
		return errors.Wrap(err, "fallback")
	}
	stepper.Seed(d.positions)
	d.local = stepper
	d.mode.Store(ModeLocal)
	return nil
}

func (d *Driver) startWorker(ctx context.Context) error {
	stepper, err := d.spawn()
	if err != nil {
		return errors.Wrap(err, "start worker")
	}
	stepper.Seed(d.mirror.positions())
	d.link = startWorker(ctx, stepper)
	d.mode.Store(ModeWorker)
	return nil
}

func (d *Driver) notify(resp StepResponse) {
	if d.observer == nil {
		return
	}
	d.observer.Observe(Frame{
		Seq:       resp.Seq,
		Mode:      d.Mode(),
		Stats:     resp.Stats,
		Positions: append([]float32(nil), d.positions...),
		Flags:     append([]Flags(nil), d.flags...),
	})
}

func (d *Driver) shutdown() {
	if d.link != nil {
		d.link.abandon()
		d.link = nil
	}
	if d.local != nil {
		d.local.Close()
		d.local = nil
	}
	log.Printf("Channel: stopped after %d frames", d.seq)
}
