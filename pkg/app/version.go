package app

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// VERSION is <major>.<minor>.<patch>+<yyyymmdd of the release month>.
const (
	VERSION = "1.0.0+20261001"
	MODULE  = "ltcd"
)

// HandleVersion is the get application version web handler.
func (app *App) HandleVersion() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request version")

		return ctx.JSON(fiber.Map{
			"version":     VERSION,
			"description": MODULE,
			"about":       Version(),
			"framerate":   app.config.Timecode.Calibration.FrameRate,
		})
	}
}

// Version is the get application version as string, e.g. "ltcd V1.0.0".
func Version() string {
	return strings.TrimSpace(MODULE + " V" + strings.Split(VERSION, "+")[0])
}
