package ltc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown timecode format")

// Digits are the raw timecode bytes H, H, m, m, s, s, f, f as received after the sync word.
// The bytes are not bcd decoded, each byte is taken as one decimal digit.
type Digits [8]byte

// Format selects the separators of a timecode string.
type Format int

const (
	// FormatDot is HH.MM.SS.FF
	FormatDot Format = iota
	// FormatColon is HH:MM:SS:FF
	FormatColon
	// FormatColonDot is HH:MM:SS.FF
	FormatColonDot
	// FormatSpace is HH MM SS FF
	FormatSpace
)

// separators returns the three separators between the digit pairs.
func (f Format) separators() [3]string {
	switch f {
	case FormatDot:
		return [3]string{".", ".", "."}
	case FormatColon:
		return [3]string{":", ":", ":"}
	case FormatSpace:
		return [3]string{" ", " ", " "}
	default:
		return [3]string{":", ":", "."}
	}
}

func (f Format) String() string {
	switch f {
	case FormatDot:
		return "dot"
	case FormatColon:
		return "colon"
	case FormatSpace:
		return "space"
	default:
		return "colondot"
	}
}

// ParseFormat parses a format name (dot, colon, colondot, space).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "dot":
		return FormatDot, nil
	case "colon":
		return FormatColon, nil
	case "colondot", "colon-dot", "":
		return FormatColonDot, nil
	case "space":
		return FormatSpace, nil
	default:
		return FormatColonDot, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Format renders the digits with the separators of f.
// Each raw byte is written in decimal, so a byte above 9 renders as more than one character.
func (d Digits) Format(f Format) string {
	sep := f.separators()

	var sb strings.Builder
	for i, v := range d {
		if i > 0 && i%2 == 0 {
			sb.WriteString(sep[i/2-1])
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	return sb.String()
}

// pair combines two raw digits to a two digit number.
func (d Digits) pair(i int) int {
	return int(d[i])*10 + int(d[i+1])
}

// Frame is a decoded timecode frame.
type Frame struct {
	Digits  Digits
	Hours   int
	Minutes int
	Seconds int
	Frames  int
	// Micros is the clock value of the edge which completed the sync word.
	Micros uint32
}

// newFrame extracts the timecode fields of the raw digits.
func newFrame(d Digits, micros uint32) Frame {
	return Frame{
		Digits:  d,
		Hours:   d.pair(0),
		Minutes: d.pair(2),
		Seconds: d.pair(4),
		Frames:  d.pair(6),
		Micros:  micros,
	}
}

// Timecode renders the frame digits with format f.
func (f Frame) Timecode(format Format) string {
	return f.Digits.Format(format)
}
