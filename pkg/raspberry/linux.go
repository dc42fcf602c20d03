//go:build linux

package raspberry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/gpio"
	"github.com/womat/debug"

	"ltcd/pkg/port"
)

// memPins must be global in package, because the gpio watch handler only receives the *gpio.Pin.
var (
	memPins = map[int]*MemPin{}
	memLock sync.Mutex
)

// MemGPIO is the gpio memory range of /dev/gpiomem.
// It is the fallback for kernels without the gpio character device.
type MemGPIO struct{}

// MemPin is a watched pin of the gpio memory range.
type MemPin struct {
	gpioPin *gpio.Pin
	// clock timestamps the edges, the gpio driver doesn't deliver a timestamp.
	clock   *port.SystemClock
	dropped uint64
	C       chan port.Event
}

// OpenMem maps the GPIO memory range from /dev/gpiomem.
func OpenMem() (*MemGPIO, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &MemGPIO{}, nil
}

// Close removes the interrupt handlers and unmaps GPIO memory.
func (c *MemGPIO) Close() error {
	return gpio.Close()
}

// NewPin watches both edges of the BCM GPIO pin p.
func (c *MemGPIO) NewPin(p int, terminator string, clock *port.SystemClock) (*MemPin, error) {
	memLock.Lock()
	defer memLock.Unlock()

	if _, ok := memPins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	pin := &MemPin{gpioPin: gpio.NewPin(p), clock: clock, C: make(chan port.Event, eventBuffer)}
	pin.gpioPin.Input()

	switch terminator {
	case "pullup":
		pin.gpioPin.PullUp()
	case "pulldown":
		pin.gpioPin.PullDown()
	case "none", "":
	default:
		return nil, ErrInvalidParam
	}

	if err := pin.gpioPin.Watch(gpio.EdgeBoth, memHandler); err != nil {
		return nil, err
	}

	memPins[p] = pin
	return pin, nil
}

// memHandler timestamps the edge and forwards it without blocking.
func memHandler(g *gpio.Pin) {
	deliver(g.Pin(), func() bool { return g.Read() == gpio.High })
}

// deliver sends the edge of pin p if the pin is still registered.
// memLock is held during the send, so release can't close C underneath it.
func deliver(p int, rising func() bool) bool {
	memLock.Lock()
	defer memLock.Unlock()

	pin, ok := memPins[p]
	if !ok {
		return false
	}

	e := port.Event{Timestamp: pin.clock.Since(), Type: port.FallingEdge}
	if rising() {
		e.Type = port.RisingEdge
	}

	select {
	case pin.C <- e:
	default:
		atomic.AddUint64(&pin.dropped, 1)
	}
	return true
}

// release unregisters pin p and closes its channel.
func release(p int) {
	memLock.Lock()
	defer memLock.Unlock()

	if pin, ok := memPins[p]; ok {
		delete(memPins, p)
		close(pin.C)
	}
}

// Events returns the channel of the pin edges.
func (p *MemPin) Events() <-chan port.Event {
	return p.C
}

// Dropped returns the number of events lost because the consumer was too slow.
func (p *MemPin) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// Close removes the watch from the pin.
// Handlers still running after Unwatch find the pin unregistered and drop their edge.
func (p *MemPin) Close() error {
	p.gpioPin.Unwatch()
	release(p.gpioPin.Pin())

	if n := p.Dropped(); n > 0 {
		debug.ErrorLog.Printf("%v pin events dropped", n)
	}
	return nil
}
