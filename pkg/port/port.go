// Package port holds the definition of a physical port and its edge events.
package port

import "time"

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

// String returns the name of the edge type.
func (t EventType) String() string {
	switch t {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "unknown"
	}
}

// Event is a single edge detected on a line.
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

// Clock is a monotonic microsecond clock.
// The value wraps around after 2^32 µs (about 71 minutes) like a hardware counter,
// so callers must compute intervals with unsigned subtraction.
type Clock interface {
	Micros() uint32
}

// SystemClock is a Clock based on the monotonic clock of the runtime.
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts a new clock at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Micros returns the elapsed microseconds since the clock was started.
func (c *SystemClock) Micros() uint32 {
	return Micros(time.Since(c.start))
}

// Since returns the elapsed time since the clock was started.
// It is used to timestamp events of drivers which don't deliver a kernel timestamp.
func (c *SystemClock) Since() time.Duration {
	return time.Since(c.start)
}

// Micros converts a duration to a wrapping microsecond counter value.
func Micros(d time.Duration) uint32 {
	return uint32(d.Microseconds())
}
