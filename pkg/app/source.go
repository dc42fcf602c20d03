package app

import (
	"fmt"

	"github.com/womat/debug"

	"ltcd/pkg/ltc"
	"ltcd/pkg/port"
	"ltcd/pkg/raspberry"
	"ltcd/pkg/simulator"
)

// openSource opens the configured edge source: the simulator, a gpiod line or a gpiomem pin.
func (app *App) openSource() (EdgeSource, error) {
	g := app.config.Gpio

	if app.config.Flag.Simulate {
		debug.InfoLog.Print("using simulated ltc signal")
		return simulator.New(app.config.Timecode.Calibration, ltc.Digits{}, true), nil
	}

	switch g.Driver {
	case "gpiod":
		chip, err := raspberry.Open(g.Chip)
		if err != nil {
			return nil, fmt.Errorf("can't open gpio chip %q: %w", g.Chip, err)
		}
		app.closers = append(app.closers, chip.Close)

		line, err := chip.NewLine(g.Line, g.Terminator)
		if err != nil {
			return nil, fmt.Errorf("can't request line %v: %w", g.Line, err)
		}
		return line, nil

	case "gpiomem":
		mem, err := raspberry.OpenMem()
		if err != nil {
			return nil, fmt.Errorf("can't open gpio memory: %w", err)
		}
		app.closers = append(app.closers, mem.Close)

		pin, err := mem.NewPin(g.Line, g.Terminator, port.NewSystemClock())
		if err != nil {
			return nil, fmt.Errorf("can't watch pin %v: %w", g.Line, err)
		}
		return pin, nil

	default:
		return nil, fmt.Errorf("%w: gpio driver %q", raspberry.ErrInvalidParam, g.Driver)
	}
}
