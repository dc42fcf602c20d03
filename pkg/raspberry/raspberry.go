//go:build linux

package raspberry

import (
	"sync/atomic"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"ltcd/pkg/port"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine *gpiod.Line
	// dropped counts events which couldn't be delivered because C was full.
	dropped uint64
	// C receives the edge changes of the line.
	C chan port.Event
}

// Open opens a GPIO character device, e.g. "gpiochip0".
func Open(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewLine requests control of a single line on a chip.
//   If granted, control is maintained until the Line is closed.
//   Both edges are watched and sent with their kernel timestamp to channel C.
//   The handler never blocks, an event is dropped if C is full.
func (c *Chip) NewLine(offset int, terminator string) (*Line, error) {
	var err error

	line := &Line{C: make(chan port.Event, eventBuffer)}

	handler := func(evt gpiod.LineEvent) {
		e := port.Event{Timestamp: evt.Timestamp, Type: port.FallingEdge}
		if evt.Type == gpiod.LineEventRisingEdge {
			e.Type = port.RisingEdge
		}

		select {
		case line.C <- e:
		default:
			atomic.AddUint64(&line.dropped, 1)
		}
	}

	switch terminator {
	case "pullup":
		line.gpiodLine, err = c.gpiodChip.RequestLine(offset, gpiod.WithEventHandler(handler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullUp)
	case "pulldown":
		line.gpiodLine, err = c.gpiodChip.RequestLine(offset, gpiod.WithEventHandler(handler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullDown)
	case "none", "":
		line.gpiodLine, err = c.gpiodChip.RequestLine(offset, gpiod.WithEventHandler(handler),
			gpiod.WithBothEdges, gpiod.AsInput)
	default:
		return nil, ErrInvalidParam
	}

	if err != nil {
		return nil, err
	}

	debug.InfoLog.Printf("watching line %v (%v)", offset, terminator)
	return line, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Events returns the channel of the line edges.
func (l *Line) Events() <-chan port.Event {
	return l.C
}

// Dropped returns the number of events lost because the consumer was too slow.
func (l *Line) Dropped() uint64 {
	return atomic.LoadUint64(&l.dropped)
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}

	if n := l.Dropped(); n > 0 {
		debug.ErrorLog.Printf("%v line events dropped", n)
	}

	close(l.C)
	return nil
}
