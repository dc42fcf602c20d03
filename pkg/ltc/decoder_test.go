package ltc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced port.Clock.
type fakeClock struct {
	now uint32
}

func (c *fakeClock) Micros() uint32 { return c.now }

// feed sends each interval as an edge through the clock driven entry point.
func feed(d *Decoder, c *fakeClock, intervals []uint32) {
	for _, i := range intervals {
		c.now += i
		d.OnEdge()
	}
}

func newTestDecoder() (*Decoder, *fakeClock) {
	c := &fakeClock{now: 1000}
	return New(Frame25, c), c
}

func TestSingleFrameSyncsOnce(t *testing.T) {
	d, c := newTestDecoder()
	payload := Digits{1, 2, 3, 4, 5, 6, 7, 8}

	var calls int
	var atSync Digits
	d.OnSync(func() {
		calls++
		atSync = d.Frame().Digits
	})

	feed(d, c, Encode(payload, SyncWord, d.Calibration()))

	require.Equal(t, 1, calls)
	assert.Equal(t, payload, atSync)
	assert.Equal(t, 12, d.Hours())
	assert.Equal(t, 34, d.Minutes())
	assert.Equal(t, 56, d.Seconds())
	assert.Equal(t, 78, d.Frames())
	assert.Equal(t, "12:34:56.78", d.Timecode(FormatColonDot))
	assert.Equal(t, c.now, d.Frame().Micros)

	assert.Equal(t, byte(0xbf), d.ByteBuffer(0))
	assert.Equal(t, byte(0xfc), d.ByteBuffer(1))
	for i := 0; i < 8; i++ {
		assert.Equal(t, payload[i], d.ByteBuffer(i+2))
	}

	s := d.Stats()
	assert.Equal(t, uint64(bitsPerFrame), s.Bits)
	assert.Equal(t, uint64(1), s.Syncs)
	assert.Zero(t, s.Violations)
}

func TestConsecutiveFramesSyncEachTime(t *testing.T) {
	d, _ := newTestDecoder()
	cal := d.Calibration()

	frames := []Digits{
		{0, 1, 0, 2, 0, 3, 0, 4},
		{0, 1, 0, 2, 0, 3, 0, 5},
		{0, 1, 0, 2, 0, 3, 0, 6},
		{2, 3, 5, 9, 5, 9, 2, 4},
		{0, 0, 0, 0, 0, 0, 0, 0},
	}

	var got []Digits
	d.OnSync(func() { got = append(got, d.Frame().Digits) })

	var intervals []uint32
	for _, f := range frames {
		intervals = AppendFrame(intervals, f, SyncWord, cal)
	}
	for _, i := range intervals {
		d.Interval(i)
	}

	if diff := cmp.Diff(frames, got); diff != "" {
		t.Errorf("decoded frames mismatch (-want +got):\n%s", diff)
	}
}

func TestUnrecognizedIntervalsChangeNothing(t *testing.T) {
	d, _ := newTestDecoder()
	cal := d.Calibration()

	intervals := Encode(Digits{1, 2, 3, 4, 5, 6, 7, 8}, SyncWord, cal)
	for _, i := range intervals {
		d.Interval(i)
	}
	// leave a half bit pending
	d.Interval(250)
	require.True(t, d.HalfBit())

	buffer, frame := d.Buffer(), d.Frame()

	for _, i := range []uint32{0, 1, 100, 166, 501, 1000, 1 << 31} {
		d.Interval(i)
	}

	assert.Equal(t, buffer, d.Buffer())
	assert.Equal(t, frame, d.Frame())
	assert.True(t, d.HalfBit())
	assert.Equal(t, uint64(7), d.Stats().Unrecognized)
}

func TestLongEdgeDuringHalfBitResets(t *testing.T) {
	d, _ := newTestDecoder()
	d.Interval(500) // "0"
	d.Interval(250)
	d.Interval(250) // "1"
	buffer := d.Buffer()
	require.Equal(t, byte(0x80), buffer.Cell(0))

	d.Interval(250)
	require.True(t, d.HalfBit())

	d.Interval(500)
	assert.False(t, d.HalfBit())
	assert.Equal(t, buffer, d.Buffer())
	assert.Equal(t, uint64(1), d.Stats().Violations)
	assert.Equal(t, uint64(2), d.Stats().Bits)

	// decoding continues from idle
	d.Interval(500)
	assert.Equal(t, byte(0x40), d.ByteBuffer(0))
}

func TestBiphaseMarkTransitions(t *testing.T) {
	tests := []struct {
		name      string
		intervals []uint32
		cell0     byte
		halfBit   bool
	}{
		{"short waits for second half", []uint32{250}, 0x00, true},
		{"two shorts are a one", []uint32{250, 250}, 0x80, false},
		{"long is a zero", []uint32{250, 250, 500}, 0x40, false},
		{"three shorts", []uint32{250, 250, 250}, 0x80, true},
		{"window bounds", []uint32{167, 333, 334, 500}, 0x20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDecoder()
			for _, i := range tt.intervals {
				d.Interval(i)
			}
			assert.Equal(t, tt.cell0, d.ByteBuffer(0))
			assert.Equal(t, tt.halfBit, d.HalfBit())
		})
	}
}

func TestClassify(t *testing.T) {
	d, _ := newTestDecoder()

	tests := []struct {
		elapsed uint32
		want    string
	}{
		{166, "unrecognized"},
		{167, "short"},
		{333, "short"},
		{334, "long"},
		{500, "long"},
		{501, "unrecognized"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Classify(tt.elapsed).String(), "elapsed %v", tt.elapsed)
	}
}

func TestBufferReadsOnCopy(t *testing.T) {
	d, _ := newTestDecoder()
	for _, i := range Encode(Digits{1, 2, 3, 4, 5, 6, 7, 8}, SyncWord, d.Calibration()) {
		d.Interval(i)
	}

	assert.Equal(t, SyncWord, d.Buffer().Word())
	assert.Equal(t, byte(0xfc), d.Buffer().Cell(1))
	assert.Equal(t, Digits{1, 2, 3, 4, 5, 6, 7, 8}, d.Buffer().Payload())
}

func TestSyncPatternChangeTakesEffectOnNextEdge(t *testing.T) {
	d, _ := newTestDecoder()
	cal := d.Calibration()

	var calls int
	d.OnSync(func() { calls++ })

	intervals := Encode(Digits{1, 2, 3, 4, 5, 6, 7, 8}, SyncWord, cal)
	for _, i := range intervals {
		d.Interval(i)
	}
	require.Equal(t, 1, calls)

	// matching the current buffer content doesn't fire retroactively
	d.SetSyncPattern(d.Buffer().Word())
	assert.Equal(t, 1, calls)

	const custom uint16 = 0b1100110011110000
	d.SetSyncPattern(custom)
	for _, i := range Encode(Digits{8, 7, 6, 5, 4, 3, 2, 1}, SyncWord, cal) {
		d.Interval(i)
	}
	assert.Equal(t, 1, calls, "default sync word must not match any more")

	for _, i := range Encode(Digits{0, 9, 0, 9, 0, 9, 0, 9}, custom, cal) {
		d.Interval(i)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, custom, d.SyncPattern())
	assert.Equal(t, "09.09.09.09", d.Timecode(FormatDot))
}

func TestSyncPatternChangeMidFrame(t *testing.T) {
	d, _ := newTestDecoder()
	var calls int
	d.OnSync(func() { calls++ })

	intervals := Encode(Digits{1, 2, 3, 4, 5, 6, 7, 8}, SyncWord, d.Calibration())
	// the last bit of the sync word is a "1" sent as two short intervals
	for _, i := range intervals[:len(intervals)-2] {
		d.Interval(i)
	}
	d.SetSyncPattern(0x0001)
	for _, i := range intervals[len(intervals)-2:] {
		d.Interval(i)
	}
	assert.Zero(t, calls)
}

func TestEdgeWindowChangeTakesEffectOnNextEdge(t *testing.T) {
	d, _ := newTestDecoder()

	d.Interval(100)
	assert.False(t, d.HalfBit())

	d.SetShortEdgeDuration(80, 120)
	d.Interval(100)
	assert.True(t, d.HalfBit())
	d.Interval(100)
	assert.False(t, d.HalfBit())
	assert.Equal(t, byte(0x80), d.ByteBuffer(0))

	d.SetLongEdgeDuration(180, 220)
	d.Interval(500)
	assert.Equal(t, byte(0x80), d.ByteBuffer(0))
	d.Interval(200)
	assert.Equal(t, byte(0x40), d.ByteBuffer(0))

	assert.Equal(t, Window{80, 120}, d.Calibration().Short)
	assert.Equal(t, Window{180, 220}, d.Calibration().Long)
}

func TestOnEdgeSurvivesClockWrap(t *testing.T) {
	c := &fakeClock{now: 0xffffff00}
	d := New(Frame25, c)

	c.now += 250
	d.OnEdge()
	c.now += 250
	d.OnEdge()

	assert.Less(t, c.now, uint32(0x1000))
	assert.Equal(t, byte(0x80), d.ByteBuffer(0))
}

func TestNoCallbackRegistered(t *testing.T) {
	d, _ := newTestDecoder()
	for _, i := range Encode(Digits{1, 2, 3, 4, 5, 6, 7, 8}, SyncWord, d.Calibration()) {
		d.Interval(i)
	}
	assert.Equal(t, uint64(1), d.Stats().Syncs)

	d.OnSync(nil)
	for _, i := range Encode(Digits{1, 2, 3, 4, 5, 6, 7, 9}, SyncWord, d.Calibration()) {
		d.Interval(i)
	}
	assert.Equal(t, 79, d.Frames())
}

func TestNewWithFrameDuration(t *testing.T) {
	d := NewWithFrameDuration(40000, &fakeClock{})
	assert.Equal(t, uint32(500), d.BitLength())
	assert.Equal(t, 25.0, d.FrameRate())
	assert.Equal(t, SyncWord, d.SyncPattern())
}

func TestAllFrameRatesDecode(t *testing.T) {
	for _, r := range []FrameRate{Frame23976, Frame24, Frame25, NoDropFrame2997, Frame30} {
		t.Run(r.String(), func(t *testing.T) {
			d := New(r, &fakeClock{})
			var calls int
			d.OnSync(func() { calls++ })

			for _, i := range Encode(Digits{1, 0, 2, 0, 3, 0, 4, 0}, SyncWord, d.Calibration()) {
				d.Interval(i)
			}
			assert.Equal(t, 1, calls)
			assert.Equal(t, "10 20 30 40", d.Timecode(FormatSpace))
		})
	}
}
