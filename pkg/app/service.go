package app

import (
	"encoding/json"
	"time"

	"github.com/womat/debug"

	"ltcd/pkg/ltc"
	"ltcd/pkg/mqtt"
)

// timecode is the mqtt and web representation of a decoded frame.
type timecode struct {
	Timecode  string
	Hours     int
	Minutes   int
	Seconds   int
	Frames    int
	Digits    ltc.Digits
	FrameRate float64
	TimeStamp time.Time
}

// service waits for decoded frames, saves them to the app main structure
// and sends them to the mqtt broker.
func (app *App) service() {
	defer app.done.Done()

	for ev := range app.sync {
		app.handleSync(ev, time.Now())
	}
}

// handleSync stores the frame and publishes it at most once per mqtt interval.
func (app *App) handleSync(ev syncEvent, now time.Time) {
	app.current.Lock()
	app.current.event = ev
	app.current.received = now

	publish := now.Sub(app.current.published) >= app.config.MQTT.Interval
	if publish {
		app.current.published = now
	}
	app.current.Unlock()

	debug.TraceLog.Printf("sync: %v", ev.frame.Timecode(app.config.Timecode.Format))

	if publish {
		app.sendMQTT(app.config.MQTT.Topic, app.timecode(ev.frame, now))
	}
}

func (app *App) timecode(f ltc.Frame, ts time.Time) timecode {
	return timecode{
		Timecode:  f.Timecode(app.config.Timecode.Format),
		Hours:     f.Hours,
		Minutes:   f.Minutes,
		Seconds:   f.Seconds,
		Frames:    f.Frames,
		Digits:    f.Digits,
		FrameRate: app.config.Timecode.Calibration.FrameRate,
		TimeStamp: ts,
	}
}

// sendMQTT send message struct to the mqtt broker.
func (app *App) sendMQTT(topic string, message interface{}) {
	b, err := json.Marshal(message)
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	app.mqtt.Publish(mqtt.Message{
		Qos:      0,
		Retained: true,
		Topic:    topic,
		Payload:  b,
	})
}
