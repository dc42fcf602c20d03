package ltc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrInvalidCalibration = errors.New("invalid calibration")
	ErrUnknownFrameRate   = errors.New("unknown frame rate")
)

// bitsPerFrame is the number of bits encoded in one ltc frame.
const bitsPerFrame = 80

// FrameRate is one of the standard ltc frame rates.
type FrameRate int

const (
	Frame23976 FrameRate = iota
	Frame24
	Frame25
	// NoDropFrame2997 is 29.97 fps counted without dropping frame numbers.
	NoDropFrame2997
	Frame30
)

// FPS returns the frame rate in frames per second.
// Unknown values are treated as 25 fps.
func (r FrameRate) FPS() float64 {
	switch r {
	case Frame23976:
		return 23.976
	case Frame24:
		return 24
	case NoDropFrame2997:
		return 29.97
	case Frame30:
		return 30
	default:
		return 25
	}
}

func (r FrameRate) String() string {
	return strconv.FormatFloat(r.FPS(), 'f', -1, 64)
}

// ParseFrameRate parses the configuration notation of a frame rate, e.g. "29.97".
func ParseFrameRate(s string) (FrameRate, error) {
	switch s {
	case "23.976":
		return Frame23976, nil
	case "24":
		return Frame24, nil
	case "25":
		return Frame25, nil
	case "29.97":
		return NoDropFrame2997, nil
	case "30":
		return Frame30, nil
	default:
		return Frame25, fmt.Errorf("%w: %q", ErrUnknownFrameRate, s)
	}
}

// Window is an inclusive range of edge durations in µs.
type Window struct {
	Min uint32
	Max uint32
}

// Contains reports whether d lies inside the window (bounds included).
func (w Window) Contains(d uint32) bool {
	return d >= w.Min && d <= w.Max
}

// Calibration holds the bit timing derived from a frame rate.
type Calibration struct {
	// FrameRate is the frame rate in frames per second.
	FrameRate float64
	// BitLength is the duration of one bit cell in µs.
	BitLength uint32
	// Short is the window of a half bit edge (first or second half of a "1").
	Short Window
	// Long is the window of a full bit edge (a "0").
	Long Window
}

// NewCalibration derives the timing of a standard frame rate.
func NewCalibration(r FrameRate) Calibration {
	fps := r.FPS()
	return newCalibration(fps, uint32(1e6/fps/bitsPerFrame))
}

// NewCalibrationFromDuration derives the timing of a frame of frameDuration µs.
func NewCalibrationFromDuration(frameDuration uint32) Calibration {
	var fps float64
	if frameDuration > 0 {
		fps = 1e6 / float64(frameDuration)
	}
	return newCalibration(fps, frameDuration/bitsPerFrame)
}

// newCalibration splits the bit cell into thirds:
//  short edges last one to two thirds, long edges two to three thirds of a bit.
func newCalibration(fps float64, bitLength uint32) Calibration {
	third := float64(bitLength) / 3
	shortMax := uint32(math.Round(2 * third))

	return Calibration{
		FrameRate: fps,
		BitLength: bitLength,
		Short:     Window{Min: uint32(math.Round(third)), Max: shortMax},
		// + 1 so the windows don't overlap
		Long: Window{Min: shortMax + 1, Max: uint32(math.Round(3 * third))},
	}
}

// Validate checks that the windows are usable for classification.
// The decoder itself accepts any values, Validate is meant for user supplied configuration.
func (c Calibration) Validate() error {
	switch {
	case c.BitLength == 0:
		return fmt.Errorf("%w: bit length is 0", ErrInvalidCalibration)
	case c.Short.Min > c.Short.Max:
		return fmt.Errorf("%w: short window %v..%v", ErrInvalidCalibration, c.Short.Min, c.Short.Max)
	case c.Long.Min > c.Long.Max:
		return fmt.Errorf("%w: long window %v..%v", ErrInvalidCalibration, c.Long.Min, c.Long.Max)
	case c.Short.Max >= c.Long.Min:
		return fmt.Errorf("%w: short window max %v overlaps long window min %v", ErrInvalidCalibration, c.Short.Max, c.Long.Min)
	}
	return nil
}
