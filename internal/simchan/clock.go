package simchan

import "time"

// Clock paces the driver loop. Round-trip timeouts always use real timers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// PacingDelay is how long to wait before the next request so that request
// starts are TargetFrame apart. A round trip that overran gets no wait.
func PacingDelay(target, roundTrip time.Duration) time.Duration {
	return max(0, target-roundTrip)
}
