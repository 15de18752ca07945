// Package simchan runs a world on its own goroutine and mirrors its positions
// back to the caller. The two sides share nothing but a position buffer, and
// exactly one side holds that buffer at any time: whoever sends a message
// drops its reference to the buffer inside it.
package simchan

import (
	"physcore/internal/physics"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrRoundTripTimeout = errors.New("step round trip timed out")
	ErrChannelClosed    = errors.New("channel closed")
	ErrBufferSize       = errors.New("buffer size does not match tracked bodies")
)

// Flags packs the per-body contact flags.
type Flags uint8

const (
	FlagOnGround Flags = 1 << iota
	FlagColliding
	FlagBlocked
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// FlagsOf packs the contact flags a body carries after its last step.
func FlagsOf(b *physics.Body) Flags {
	var f Flags
	if b.OnGround() {
		f |= FlagOnGround
	}
	if b.Colliding() {
		f |= FlagColliding
	}
	if b.Blocked() {
		f |= FlagBlocked
	}
	return f
}

// StepRequest asks the worker for one frame. Positions and Flags are handed
// over with the request; the sender must not touch them until a response
// brings them back.
type StepRequest struct {
	Seq       uint64
	Delta     time.Duration
	Positions []float32 // 3 per tracked body
	Flags     []Flags   // 1 per tracked body
}

// StepResponse returns the buffers filled with the world state after the step.
type StepResponse struct {
	Seq       uint64
	Positions []float32
	Flags     []Flags
	Stats     physics.StepStats
	Err       error
}

// Frame is what observers see after each applied round trip. Its slices are
// copies and stay valid after Observe returns.
type Frame struct {
	Seq       uint64            `msgpack:"seq"`
	Mode      string            `msgpack:"mode"`
	Stats     physics.StepStats `msgpack:"stats"`
	Positions []float32         `msgpack:"positions"`
	Flags     []Flags           `msgpack:"flags"`
}

type Observer interface {
	Observe(Frame)
}

// Fanout hands every frame to each observer in order.
type Fanout []Observer

func (f Fanout) Observe(frame Frame) {
	for _, o := range f {
		o.Observe(frame)
	}
}
