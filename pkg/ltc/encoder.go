package ltc

// Encode returns the edge intervals (µs) of one biphase mark coded frame.
// The payload is sent first (oldest bit of cell 9 first), then the sync
// pattern, so feeding the intervals to a decoder leaves the pattern in cells
// 0..1 and the payload in cells 2..9 of its frame buffer.
//
// A "0" is one long interval of a full bit length, a "1" two short intervals of half a bit length.
func Encode(payload Digits, pattern uint16, cal Calibration) []uint32 {
	return AppendFrame(make([]uint32, 0, 2*bitsPerFrame), payload, pattern, cal)
}

// AppendFrame appends the intervals of one frame to dst.
func AppendFrame(dst []uint32, payload Digits, pattern uint16, cal Calibration) []uint32 {
	var cells FrameBuffer
	cells[0] = byte(pattern >> 8)
	cells[1] = byte(pattern)
	copy(cells[2:], payload[:])

	for i := frameCells - 1; i >= 0; i-- {
		for b := 0; b < 8; b++ {
			dst = AppendBit(dst, cells[i]>>b&1 == 1, cal)
		}
	}
	return dst
}

// AppendBit appends the intervals of a single bit to dst.
func AppendBit(dst []uint32, bit bool, cal Calibration) []uint32 {
	if bit {
		half := cal.BitLength / 2
		return append(dst, half, cal.BitLength-half)
	}
	return append(dst, cal.BitLength)
}
