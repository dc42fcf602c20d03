// Package simulator generates the edges of a running ltc signal.
// It replaces the gpio line for development and tests without hardware.
package simulator

import (
	"math"
	"time"

	"github.com/womat/debug"

	"ltcd/pkg/ltc"
	"ltcd/pkg/port"
)

// Source sends the edges of consecutive ltc frames to channel C.
type Source struct {
	cal     ltc.Calibration
	pattern uint16
	// digits is the timecode of the next frame.
	digits ltc.Digits
	// fps is the number of frames per second used for counting.
	fps int
	// timestamp is the time of the last generated edge.
	timestamp time.Duration
	edgeType  port.EventType

	// C is the channel to send the generated edges.
	C chan port.Event

	// quit is the channel to stop the generator
	quit chan struct{}
	// done signals that the generator is stopped
	done chan struct{}
}

// New initials a generator starting at timecode start.
// With realtime set, every frame is sent at the pace of the frame rate,
// otherwise frames are generated as fast as the receiver reads them.
func New(cal ltc.Calibration, start ltc.Digits, realtime bool) *Source {
	s := &Source{
		cal:      cal,
		pattern:  ltc.SyncWord,
		digits:   start,
		fps:      int(math.Round(cal.FrameRate)),
		edgeType: port.RisingEdge,
		C:        make(chan port.Event),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if s.fps <= 0 {
		s.fps = 25
	}

	go s.run(realtime)
	return s
}

// Events returns the channel of the generated edges.
func (s *Source) Events() <-chan port.Event {
	return s.C
}

// Close stops the generator.
func (s *Source) Close() error {
	close(s.quit)
	<-s.done
	close(s.C)
	return nil
}

func (s *Source) run(realtime bool) {
	defer close(s.done)

	frameDuration := time.Duration(s.cal.BitLength) * 80 * time.Microsecond
	debug.InfoLog.Printf("simulating ltc at %v fps, frame duration %v", s.cal.FrameRate, frameDuration)

	var tick <-chan time.Time
	if realtime {
		t := time.NewTicker(frameDuration)
		defer t.Stop()
		tick = t.C
	}

	intervals := make([]uint32, 0, 160)

	for {
		if tick != nil {
			select {
			case <-s.quit:
				return
			case <-tick:
			}
		}

		intervals = ltc.AppendFrame(intervals[:0], s.digits, s.pattern, s.cal)
		for _, i := range intervals {
			s.timestamp += time.Duration(i) * time.Microsecond
			s.edgeType = toggle(s.edgeType)

			select {
			case <-s.quit:
				return
			case s.C <- port.Event{Timestamp: s.timestamp, Type: s.edgeType}:
			}
		}

		s.digits = Next(s.digits, s.fps)
	}
}

func toggle(t port.EventType) port.EventType {
	if t == port.RisingEdge {
		return port.FallingEdge
	}
	return port.RisingEdge
}

// Next returns the timecode of the following frame.
// Each raw digit counts from 0 to 9, the frame pair wraps at fps, the
// seconds and minutes at 60 and the hours at 24.
func Next(d ltc.Digits, fps int) ltc.Digits {
	limits := [4]int{24, 60, 60, fps}

	for pair := 3; pair >= 0; pair-- {
		v := int(d[2*pair])*10 + int(d[2*pair+1]) + 1
		if v < limits[pair] {
			d[2*pair], d[2*pair+1] = byte(v/10), byte(v%10)
			return d
		}
		d[2*pair], d[2*pair+1] = 0, 0
	}
	return d
}
