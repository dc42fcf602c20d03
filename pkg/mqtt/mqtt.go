// Package mqtt publishes messages to a mqtt broker.
package mqtt

import (
	"sync/atomic"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// queueSize is the number of messages C buffers before Publish drops messages.
	queueSize = 16
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	client mqttlib.Client
	// dropped counts all messages Publish couldn't queue,
	// droppedRun the ones since the last queued message.
	dropped    uint64
	droppedRun uint64
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C: make(chan Message, queueSize),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		debug.InfoLog.Print("no mqtt broker defined, publishing is disabled")
		return nil
	}

	opts := mqttlib.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	m.client = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.client.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.client == nil {
		return nil
	}

	m.client.Disconnect(quiesce)
	return nil
}

// Publish queues msg without blocking. It reports false if the queue is full.
// Only the first message of a run of dropped messages is logged,
// the size of the run is logged when the queue accepts messages again.
func (m *Handler) Publish(msg Message) bool {
	select {
	case m.C <- msg:
		if n := atomic.SwapUint64(&m.droppedRun, 0); n > 0 {
			debug.ErrorLog.Printf("mqtt queue accepts messages again, %v messages dropped", n)
		}
		return true
	default:
		atomic.AddUint64(&m.dropped, 1)
		if atomic.AddUint64(&m.droppedRun, 1) == 1 {
			debug.ErrorLog.Printf("mqtt queue full, dropping messages for topic %v", msg.Topic)
		}
		return false
	}
}

// Dropped returns the number of messages Publish couldn't queue.
func (m *Handler) Dropped() uint64 {
	return atomic.LoadUint64(&m.dropped)
}

// Service listen to a message on the channel C and send the message to mqtt.
// If no client or topic is defined, the message will be ignored.
// Service returns when C is closed.
func (m *Handler) Service() {
	for msg := range m.C {
		if m.client == nil || msg.Topic == "" {
			continue
		}

		if !m.client.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.TraceLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		t := m.client.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(msg.Topic)
	}
}

// Close stops Service and disconnects from the broker.
func (m *Handler) Close() error {
	if n := m.Dropped(); n > 0 {
		debug.ErrorLog.Printf("%v mqtt messages dropped", n)
	}

	close(m.C)
	return m.Disconnect()
}
