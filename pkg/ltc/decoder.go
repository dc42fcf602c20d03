// Package ltc is a software decoder for linear timecode (SMPTE/EBU LTC).
// https://en.wikipedia.org/wiki/Linear_timecode
//
// LTC uses biphase mark code: every bit cell starts with an edge, a "1" has an
// additional edge in the middle of the cell. The decoder measures the time
// between edges, folds two short edges or one long edge into a bit, and
// shifts the bits into an 80 bit frame buffer. Whenever the 16 newest bits
// equal the sync word, the 64 bits before the sync word are the timecode.
//
// The Decoder is not safe for concurrent use. Exactly one goroutine feeds
// edges; the sync callback runs inline on that goroutine and must not block.
package ltc

import (
	"ltcd/pkg/port"
)

// SyncWord is the ltc sync word 0011 1111 1111 1101 as it appears in the
// frame buffer, newest bit first.
const SyncWord uint16 = 0b1011111111111100

// PulseClass is the classification of the time between two edges.
type PulseClass int

const (
	// Unrecognized is an edge outside of both windows (noise or jitter).
	Unrecognized PulseClass = iota
	// Short is a half bit edge.
	Short
	// Long is a full bit edge.
	Long
)

// String returns the name of the class, e.g. "short".
func (p PulseClass) String() string {
	switch p {
	case Short:
		return "short"
	case Long:
		return "long"
	default:
		return "unrecognized"
	}
}

// stateType represents the state of the biphase mark decoding.
type stateType int

const (
	// idle waits for the first edge of a bit cell.
	idle stateType = iota
	// halfBitPending has seen the first short edge of a "1" and waits for the second.
	halfBitPending
)

// Stats counts the decoding events since the decoder was created.
type Stats struct {
	Edges        uint64
	Bits         uint64
	Unrecognized uint64
	// Violations counts long edges received while the second half of a "1" was expected.
	Violations uint64
	Syncs      uint64
}

// Decoder represents the ltc decoding state machine.
type Decoder struct {
	// clock is read by OnEdge to measure the time between edges.
	clock port.Clock
	// last is the clock value of the previous edge.
	last uint32

	cal         Calibration
	syncPattern uint16

	state  stateType
	buffer FrameBuffer

	// frame holds the last decoded timecode, it's only updated on sync.
	frame  Frame
	onSync func()

	stats Stats
}

// New initials a decoder for a standard frame rate.
// If clock is nil, a port.SystemClock is used.
func New(r FrameRate, clock port.Clock) *Decoder {
	return NewWithCalibration(NewCalibration(r), clock)
}

// NewWithFrameDuration initials a decoder for frames of frameDuration µs.
func NewWithFrameDuration(frameDuration uint32, clock port.Clock) *Decoder {
	return NewWithCalibration(NewCalibrationFromDuration(frameDuration), clock)
}

// NewWithCalibration initials a decoder with explicit timing.
func NewWithCalibration(cal Calibration, clock port.Clock) *Decoder {
	if clock == nil {
		clock = port.NewSystemClock()
	}

	return &Decoder{
		clock:       clock,
		last:        clock.Micros(),
		cal:         cal,
		syncPattern: SyncWord,
	}
}

// OnEdge has to be called once per signal transition.
// It reads the clock and decodes the time since the previous edge.
func (d *Decoder) OnEdge() {
	d.edgeAt(d.clock.Micros())
}

// Edge decodes a line event using its own timestamp instead of the clock.
func (d *Decoder) Edge(evt port.Event) {
	d.edgeAt(port.Micros(evt.Timestamp))
}

// edgeAt handles an edge at clock value now; the unsigned subtraction survives clock wraps.
func (d *Decoder) edgeAt(now uint32) {
	elapsed := now - d.last
	d.last = now
	d.decode(elapsed)
}

// Interval decodes one elapsed time between two edges in µs.
// The internal edge clock is advanced by elapsed.
func (d *Decoder) Interval(elapsed uint32) {
	d.last += elapsed
	d.decode(elapsed)
}

// Classify classifies an elapsed time with the current windows.
func (d *Decoder) Classify(elapsed uint32) PulseClass {
	switch {
	case d.cal.Short.Contains(elapsed):
		return Short
	case d.cal.Long.Contains(elapsed):
		return Long
	default:
		return Unrecognized
	}
}

// decode runs the biphase mark state machine:
//  idle           + short: first half of a "1", wait for the second half
//  halfBitPending + short: "1"
//  idle           + long:  "0"
//  halfBitPending + long:  protocol violation, back to idle without a bit
// Unrecognized edges are dropped without touching any state.
func (d *Decoder) decode(elapsed uint32) {
	d.stats.Edges++

	switch d.Classify(elapsed) {
	case Short:
		if d.state == idle {
			d.state = halfBitPending
			return
		}
		d.state = idle
		d.push(true)

	case Long:
		if d.state == halfBitPending {
			d.state = idle
			d.stats.Violations++
			return
		}
		d.push(false)

	default:
		d.stats.Unrecognized++
	}
}

// push shifts a decoded bit into the frame buffer and checks for the sync word.
func (d *Decoder) push(bit bool) {
	d.stats.Bits++
	d.buffer.Push(bit)

	if d.buffer.Word() != d.syncPattern {
		return
	}

	d.stats.Syncs++
	d.frame = newFrame(d.buffer.Payload(), d.last)

	if d.onSync != nil {
		d.onSync()
	}
}

// OnSync registers the callback which is called each time the sync word is detected.
// The callback runs on the goroutine feeding the edges, before the edge call returns.
// A nil callback removes the registration.
func (d *Decoder) OnSync(callback func()) {
	d.onSync = callback
}

// SetSyncPattern replaces the sync word, effective from the next edge.
func (d *Decoder) SetSyncPattern(pattern uint16) {
	d.syncPattern = pattern
}

// SetShortEdgeDuration sets the window of half bit edges in µs.
func (d *Decoder) SetShortEdgeDuration(min, max uint32) {
	d.cal.Short = Window{Min: min, Max: max}
}

// SetLongEdgeDuration sets the window of full bit edges in µs.
func (d *Decoder) SetLongEdgeDuration(min, max uint32) {
	d.cal.Long = Window{Min: min, Max: max}
}

// ByteBuffer returns cell index of the frame buffer (0 = newest).
func (d *Decoder) ByteBuffer(index int) byte {
	return d.buffer.Cell(index)
}

// Buffer returns a copy of the frame buffer.
func (d *Decoder) Buffer() FrameBuffer {
	return d.buffer
}

// HalfBit reports whether the first half of a "1" was received.
func (d *Decoder) HalfBit() bool {
	return d.state == halfBitPending
}

// SyncPattern returns the sync word compared against the 16 newest bits.
func (d *Decoder) SyncPattern() uint16 { return d.syncPattern }

// Calibration returns the current timing including runtime window changes.
func (d *Decoder) Calibration() Calibration { return d.cal }

// BitLength returns the duration of one bit in µs.
func (d *Decoder) BitLength() uint32 { return d.cal.BitLength }

// FrameRate returns the frame rate in frames per second.
func (d *Decoder) FrameRate() float64 { return d.cal.FrameRate }

// Frame returns the last decoded frame.
func (d *Decoder) Frame() Frame { return d.frame }

func (d *Decoder) Hours() int   { return d.frame.Hours }
func (d *Decoder) Minutes() int { return d.frame.Minutes }
func (d *Decoder) Seconds() int { return d.frame.Seconds }
func (d *Decoder) Frames() int  { return d.frame.Frames }

// Timecode returns the last decoded timecode as string.
func (d *Decoder) Timecode(format Format) string {
	return d.frame.Digits.Format(format)
}

// Stats returns the decoding counters.
func (d *Decoder) Stats() Stats { return d.stats }
