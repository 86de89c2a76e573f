package events

import "github.com/steamserverui/ssui-console/internal/logging"

type MockTracer struct{}

var Mock = MockTracer{}

func (MockTracer) Request(method, path string, status int) {
	logging.Trace("mock.request", map[string]interface{}{"method": method, "path": path, "status": status})
}

func (MockTracer) Publish(stream, line string, subscribers int) {
	logging.Trace("mock.publish", map[string]interface{}{"stream": stream, "line": line, "subscribers": subscribers})
}
