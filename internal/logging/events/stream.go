package events

import (
	"time"

	"github.com/steamserverui/ssui-console/internal/logging"
)

type StreamTracer struct{}

var Stream = StreamTracer{}

func (StreamTracer) Connect(name, url string, attempt int) {
	logging.Trace("stream.connect", map[string]interface{}{"stream": name, "url": url, "attempt": attempt})
}

func (StreamTracer) Open(name, url string) {
	logging.Trace("stream.open", map[string]interface{}{"stream": name, "url": url})
}

func (StreamTracer) Disconnected(name string, err error) {
	payload := map[string]interface{}{"stream": name}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("stream.disconnected", payload)
}

func (StreamTracer) ReconnectScheduled(name string, delay time.Duration) {
	logging.Trace("stream.reconnect", map[string]interface{}{"stream": name, "delay_ms": delay.Milliseconds()})
}

func (StreamTracer) Abandoned(name string) {
	logging.Trace("stream.abandoned", map[string]interface{}{"stream": name})
}

func (StreamTracer) BackendSwitch(name, from, to string) {
	logging.Trace("stream.backend-switch", map[string]interface{}{"stream": name, "from": from, "to": to})
}

func (StreamTracer) Closed(name string) {
	logging.Trace("stream.closed", map[string]interface{}{"stream": name})
}
