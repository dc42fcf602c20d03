package ltc

// frameCells is the number of byte cells of the frame buffer (80 bits).
const frameCells = bitsPerFrame / 8

// FrameBuffer is an 80 bit shift register over the decoded bit stream.
//
// Cell 0 holds the newest bits, cell 9 the oldest. Read as one big-endian
// number (cell 0 first, most significant bit first) the register lists the
// bits from newest to oldest: bit 7 of cell 0 is the most recently decoded
// bit, bit 0 of cell 9 the oldest one still held.
type FrameBuffer [frameCells]byte

// ShiftRight moves every bit one position towards the oldest end.
// Bit 0 of each cell carries into bit 7 of the next older cell, bit 0 of
// cell 9 is dropped and bit 7 of cell 0 is cleared.
func (b *FrameBuffer) ShiftRight() {
	for i := frameCells - 1; i > 0; i-- {
		b[i] = b[i]>>1 | b[i-1]<<7
	}
	b[0] >>= 1
}

// Push shifts the register and stores bit as the newest bit.
func (b *FrameBuffer) Push(bit bool) {
	b.ShiftRight()
	if bit {
		b[0] |= 0x80
	}
}

// Cell returns the byte cell i (0 = newest). Out of range indexes return 0.
func (b FrameBuffer) Cell(i int) byte {
	if i < 0 || i >= frameCells {
		return 0
	}
	return b[i]
}

// Word returns the 16 newest bits: cell 0 is the high byte, cell 1 the low byte.
func (b FrameBuffer) Word() uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// Payload returns the 64 bits following the 16 newest bits (cells 2..9).
func (b FrameBuffer) Payload() (p Digits) {
	copy(p[:], b[2:])
	return p
}
