package events

import "github.com/steamserverui/ssui-console/internal/logging"

type APITracer struct{}

type SettingsTracer struct{}

var (
	API      = APITracer{}
	Settings = SettingsTracer{}
)

func (APITracer) Request(method, url string) {
	logging.Trace("api.request", map[string]interface{}{"method": method, "url": url})
}

func (APITracer) Response(method, url string, status int) {
	logging.Trace("api.response", map[string]interface{}{"method": method, "url": url, "status": status})
}

func (APITracer) AuthRequired(url string) {
	logging.Trace("api.auth-required", map[string]interface{}{"url": url})
}

func (APITracer) BackendActive(id, url string) {
	logging.Trace("api.backend-active", map[string]interface{}{"id": id, "url": url})
}

func (SettingsTracer) Submit(endpoint, field string, value interface{}) {
	logging.Trace("settings.submit", map[string]interface{}{"endpoint": endpoint, "field": field, "value": value})
}

func (SettingsTracer) Result(field string, err error) {
	payload := map[string]interface{}{"field": field}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("settings.result", payload)
}
