// Package config holds the application configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"

	"ltcd/pkg/ltc"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config defines the struct of global config and the struct of the configuration file.
type Config struct {
	Gpio      GpioConfig      `yaml:"gpio"`
	Timecode  TimecodeConfig  `yaml:"timecode"`
	Flag      FlagConfig      `yaml:"-"`
	Debug     DebugConfig     `yaml:"debug"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	Debug      string
	ConfigFile string
	Simulate   bool
}

// GpioConfig defines the input line of the ltc signal.
//  driver is "gpiod" (character device) or "gpiomem" (/dev/gpiomem)
//  terminator is "pullup", "pulldown" or "none"
type GpioConfig struct {
	Chip       string `yaml:"chip"`
	Line       int    `yaml:"line"`
	Driver     string `yaml:"driver"`
	Terminator string `yaml:"terminator"`
}

// EdgeWindow is a min/max pair of edge durations in µs.
type EdgeWindow struct {
	Min uint32 `yaml:"min"`
	Max uint32 `yaml:"max"`
}

// TimecodeConfig defines the decoder calibration.
// FrameDuration (µs) takes precedence over FrameRate, the windows and the sync pattern are optional overrides.
type TimecodeConfig struct {
	FrameRate     string          `yaml:"framerate"`
	FrameDuration uint32          `yaml:"frameduration"`
	SyncPattern   uint16          `yaml:"syncpattern"`
	ShortEdge     *EdgeWindow     `yaml:"shortedge"`
	LongEdge      *EdgeWindow     `yaml:"longedge"`
	FormatString  string          `yaml:"format"`
	Format        ltc.Format      `yaml:"-"`
	Calibration   ltc.Calibration `yaml:"-"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection  string        `yaml:"connection"`
	ClientID    string        `yaml:"clientid"`
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
	Topic       string        `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Gpio: GpioConfig{
			Chip:       "gpiochip0",
			Line:       17,
			Driver:     "gpiod",
			Terminator: "none",
		},
		Timecode: TimecodeConfig{
			FrameRate:    "25",
			SyncPattern:  ltc.SyncWord,
			FormatString: "colondot",
		},
		Flag: FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
			},
		},
		MQTT: MQTTConfig{
			ClientID:    "ltcd",
			IntervalInt: 1,
			Topic:       "ltc/timecode",
		},
	}
}

// LoadConfig reads the config file and derives the runtime values.
func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.MQTT.Interval = time.Duration(c.MQTT.IntervalInt) * time.Second

	return c.setTimecodeConfig()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return c.decode(file)
}

func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// setTimecodeConfig derives the calibration of the decoder.
// User supplied windows are validated, the decoder itself never rejects them.
func (c *Config) setTimecodeConfig() (err error) {
	t := &c.Timecode

	if t.Format, err = ltc.ParseFormat(t.FormatString); err != nil {
		return err
	}

	if t.FrameDuration > 0 {
		t.Calibration = ltc.NewCalibrationFromDuration(t.FrameDuration)
	} else {
		r, err := ltc.ParseFrameRate(t.FrameRate)
		if err != nil {
			return err
		}
		t.Calibration = ltc.NewCalibration(r)
	}

	if t.ShortEdge != nil {
		t.Calibration.Short = ltc.Window{Min: t.ShortEdge.Min, Max: t.ShortEdge.Max}
	}
	if t.LongEdge != nil {
		t.Calibration.Long = ltc.Window{Min: t.LongEdge.Min, Max: t.LongEdge.Max}
	}
	if t.SyncPattern == 0 {
		return fmt.Errorf("%w: sync pattern is 0", ErrInvalidConfig)
	}

	return t.Calibration.Validate()
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("%w: debug flag %q", ErrInvalidConfig, c.Debug.FlagString)
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
