// Package app wires the edge source, the ltc decoder, the web server and the mqtt publisher.
package app

import (
	"net/url"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"ltcd/pkg/app/config"
	"ltcd/pkg/ltc"
	"ltcd/pkg/mqtt"
	"ltcd/pkg/port"
)

// syncQueue is the number of decoded frames buffered between decoder and service.
const syncQueue = 64

// EdgeSource delivers the edges of the ltc signal.
type EdgeSource interface {
	Events() <-chan port.Event
	Close() error
}

// syncEvent is sent by the decoder goroutine on each sync.
// It's a plain value, so the sync callback doesn't allocate.
type syncEvent struct {
	frame ltc.Frame
	stats ltc.Stats
	// missed is the number of sync events dropped before this one
	missed uint64
}

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// source delivers the line edges, closers release the gpio chip or memory
	source  EdgeSource
	closers []func() error

	// decoder is owned by the decoder goroutine, nobody else may touch it after Run
	decoder *ltc.Decoder
	// sync receives the decoded frames of the decoder goroutine
	sync chan syncEvent
	// missed counts frames the service was too slow for, written by the decoder goroutine only
	missed uint64

	// current is the last decoded frame
	current struct {
		sync.RWMutex
		event     syncEvent
		received  time.Time
		published time.Time
	}

	// quit stops the decoder and service goroutines, done signals they returned
	quit chan struct{}
	done sync.WaitGroup
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	app := &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt: mqtt.New(),

		sync: make(chan syncEvent, syncQueue),
		quit: make(chan struct{}),
	}

	app.decoder = ltc.NewWithCalibration(config.Timecode.Calibration, nil)
	app.decoder.SetSyncPattern(config.Timecode.SyncPattern)
	app.decoder.OnSync(app.onSync)

	// initDefaultRoutes should be always called last because it may access things
	// which must be initialized before
	app.initDefaultRoutes()

	return app, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	app.done.Add(2)
	go app.mqtt.Service()
	go app.runWebServer()
	go app.runDecoder()
	go app.service()

	return nil
}

// init opens the edge source and connects to the mqtt broker.
func (app *App) init() (err error) {
	if app.source, err = app.openSource(); err != nil {
		debug.ErrorLog.Printf("can't open edge source: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	return nil
}

// Close stops the goroutines and releases the edge source, the gpio and the mqtt connection.
// Calling Close again is a no-op.
func (app *App) Close() error {
	if app.quit == nil {
		return nil
	}

	if app.source != nil {
		_ = app.source.Close()
		app.source = nil
	}
	close(app.quit)
	app.done.Wait()
	app.quit = nil

	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i]()
	}
	app.closers = nil

	_ = app.web.Shutdown()

	if app.mqtt != nil {
		_ = app.mqtt.Close()
		app.mqtt = nil
	}
	return nil
}
