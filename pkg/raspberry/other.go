//go:build !linux

package raspberry

import "ltcd/pkg/port"

type Chip struct{}

type Line struct{ C chan port.Event }

// Open always fails, the gpio character device only exists on linux.
func Open(string) (*Chip, error) { return nil, ErrNotSupported }

func (c *Chip) NewLine(int, string) (*Line, error) { return nil, ErrNotSupported }
func (c *Chip) Close() error                       { return nil }
func (l *Line) Events() <-chan port.Event          { return l.C }
func (l *Line) Dropped() uint64                    { return 0 }
func (l *Line) Close() error                       { return nil }

type MemGPIO struct{}

type MemPin struct{ C chan port.Event }

// OpenMem always fails, /dev/gpiomem only exists on linux.
func OpenMem() (*MemGPIO, error) { return nil, ErrNotSupported }

func (c *MemGPIO) Close() error { return nil }
func (c *MemGPIO) NewPin(int, string, *port.SystemClock) (*MemPin, error) {
	return nil, ErrNotSupported
}
func (p *MemPin) Events() <-chan port.Event { return p.C }
func (p *MemPin) Dropped() uint64          { return 0 }
func (p *MemPin) Close() error             { return nil }
