package app

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the last decoded timecode and the decoder statistics.
// Before the first sync it responds with 503 Service Unavailable.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		app.current.RLock()
		ev, received := app.current.event, app.current.received
		app.current.RUnlock()

		if received.IsZero() {
			ctx.Status(http.StatusServiceUnavailable)
			return ctx.JSON(fiber.Map{"error": "no timecode received"})
		}

		return ctx.JSON(fiber.Map{
			"timecode": app.timecode(ev.frame, received),
			"stats": fiber.Map{
				"edges":        ev.stats.Edges,
				"bits":         ev.stats.Bits,
				"unrecognized": ev.stats.Unrecognized,
				"violations":   ev.stats.Violations,
				"syncs":        ev.stats.Syncs,
				"missed":       ev.missed,
			},
		})
	}
}
