package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// signalTimeout is the time without sync after which the ltc signal counts as lost.
const signalTimeout = time.Second

// health is the response of the health web service.
type health struct {
	NumGoroutines   int
	HeapAllocatedMB uint64
	SysMemoryMB     uint64
	Version         string
	ProgLang        string
	HostName        string
	Time            string
	// Signal is true while frames are decoded.
	Signal bool
	// LastSync is the time of the last decoded frame, empty before the first one.
	LastSync string `json:",omitempty"`
}

// HandleHealth returns data about the health of myself and the ltc signal.
// output example:
//  {"NumGoroutines":9,"HeapAllocatedMB":2,"SysMemoryMB":11,"Version":"1.0.0+20261001",
//   "ProgLang":"go1.20.3","HostName":"rpi","Time":"...","Signal":true,"LastSync":"..."}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		now := time.Now()
		h := health{
			NumGoroutines:   runtime.NumGoroutine(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Time:            now.Format(time.RFC3339),
		}

		app.current.RLock()
		received := app.current.received
		app.current.RUnlock()

		if !received.IsZero() {
			h.LastSync = received.Format(time.RFC3339Nano)
			h.Signal = now.Sub(received) < signalTimeout
		}

		ctx.Status(http.StatusOK)
		return ctx.JSON(h)
	}
}
