// Package raspberry is the watcher for gpio ports.
// It delivers the edges of a single input line as port.Event values on a channel.
package raspberry

import "errors"

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrNotSupported = errors.New("gpio is not supported on this platform")
)

// eventBuffer is the capacity of the event channels.
// At 30 fps a ltc signal has up to 4800 edges per second.
const eventBuffer = 4096
