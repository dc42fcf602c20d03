package app

import (
	"github.com/womat/debug"
)

// runDecoder feeds the line events to the decoder.
// It is the only goroutine which touches app.decoder.
func (app *App) runDecoder() {
	defer app.done.Done()
	defer close(app.sync)

	events := app.source.Events()
	for {
		select {
		case <-app.quit:
			return
		case evt, open := <-events:
			if !open {
				debug.InfoLog.Print("edge source closed")
				return
			}

			app.decoder.Edge(evt)
		}
	}
}

// onSync runs inline in the decoder goroutine, so it must never block.
func (app *App) onSync() {
	select {
	case app.sync <- syncEvent{frame: app.decoder.Frame(), stats: app.decoder.Stats(), missed: app.missed}:
	default:
		app.missed++
	}
}
