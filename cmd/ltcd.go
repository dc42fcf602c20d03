package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"ltcd/pkg/app"
	"ltcd/pkg/app/config"
)

const defaultConfigFile = "/opt/ltcd/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "Linear timecode (LTC) decoder for a gpio input line",
		Version: app.VERSION,
		Description: "Decode the biphase mark coded linear timecode of an audio signal connected to a gpio line," +
			"\n serve the current timecode over http and publish it to mqtt." +
			"\n Supported frame rates are 23.976, 24, 25, 29.97 (non drop frame) and 30 fps.",
		UsageText: "ltcd [--config <file>] [--log standard|debug|trace] [--simulate]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the decoder and use the configuration file ltcd.yaml" +
			"\n\t\tltcd --config /opt/ltcd/ltcd.yaml" +
			"\n\tdecode a generated signal instead of the gpio line" +
			"\n\t\tltcd --config /opt/ltcd/ltcd.yaml --simulate",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.Debug, Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
			&cli.BoolFlag{Name: "simulate", Aliases: []string{"s"}, Destination: &cfg.Flag.Simulate, Usage: "decode a simulated ltc signal"},
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
				_ = cfg.Debug.File.Close()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C)
			sig := <-quit
			debug.InfoLog.Printf("Got %s signal. Aborting...", sig)

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))

	if err := cliApp.Run(os.Args); err != nil {
		debug.FatalLog.Print(err)
		return
	}

	exitCode = 0
}
