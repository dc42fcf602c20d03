package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ltcd/pkg/ltc"
)

func TestDefaults(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.setTimecodeConfig())

	assert.Equal(t, ltc.NewCalibration(ltc.Frame25), c.Timecode.Calibration)
	assert.Equal(t, ltc.FormatColonDot, c.Timecode.Format)
	assert.Equal(t, ltc.SyncWord, c.Timecode.SyncPattern)
}

func TestTimecodeOverrides(t *testing.T) {
	c := NewConfig()
	err := c.decode(strings.NewReader(`
timecode:
  framerate: "30"
  syncpattern: 0xbffc
  shortedge: {min: 150, max: 260}
  longedge: {min: 300, max: 480}
  format: space
gpio:
  line: 4
  driver: gpiomem
`))
	require.NoError(t, err)
	require.NoError(t, c.setTimecodeConfig())

	cal := c.Timecode.Calibration
	assert.Equal(t, uint32(416), cal.BitLength)
	assert.Equal(t, ltc.Window{Min: 150, Max: 260}, cal.Short)
	assert.Equal(t, ltc.Window{Min: 300, Max: 480}, cal.Long)
	assert.Equal(t, ltc.FormatSpace, c.Timecode.Format)
	assert.Equal(t, 4, c.Gpio.Line)
	assert.Equal(t, "gpiomem", c.Gpio.Driver)
	assert.Equal(t, "gpiochip0", c.Gpio.Chip)
}

func TestFrameDurationWins(t *testing.T) {
	c := NewConfig()
	c.Timecode.FrameRate = "24"
	c.Timecode.FrameDuration = 40000
	require.NoError(t, c.setTimecodeConfig())
	assert.Equal(t, uint32(500), c.Timecode.Calibration.BitLength)
}

func TestInvalidTimecodeConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"frame rate", func(c *Config) { c.Timecode.FrameRate = "60" }, ltc.ErrUnknownFrameRate},
		{"format", func(c *Config) { c.Timecode.FormatString = "hex" }, ltc.ErrUnknownFormat},
		{"overlapping windows", func(c *Config) {
			c.Timecode.ShortEdge = &EdgeWindow{Min: 100, Max: 400}
		}, ltc.ErrInvalidCalibration},
		{"sync pattern", func(c *Config) { c.Timecode.SyncPattern = 0 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			tt.modify(c)
			assert.ErrorIs(t, c.setTimecodeConfig(), tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ltcd.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
debug:
  file: stdout
  flag: debug
mqtt:
  connection: tcp://127.0.0.1:1883
  interval: 5
timecode:
  framerate: "29.97"
`), 0o600))

	c := NewConfig()
	c.Flag.ConfigFile = file
	c.Flag.Debug = "standard"
	require.NoError(t, c.LoadConfig())

	assert.Equal(t, "standard", c.Debug.FlagString)
	assert.Equal(t, os.Stdout, c.Debug.File)
	assert.Equal(t, 5*time.Second, c.MQTT.Interval)
	assert.Equal(t, 29.97, c.Timecode.Calibration.FrameRate)
}

func TestLoadConfigMissingFile(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.ErrorIs(t, c.LoadConfig(), os.ErrNotExist)
}
