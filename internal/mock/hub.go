package mock

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/steamserverui/ssui-console/internal/logging/events"
)

const subscriberBuffer = 64

// hub fans published lines out to the clients of each stream.
type hub struct {
	mu      sync.Mutex
	streams map[string]map[chan string]struct{}
}

func newHub() *hub {
	return &hub{streams: map[string]map[chan string]struct{}{}}
}

func (h *hub) subscribe(stream string) chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streams[stream] == nil {
		h.streams[stream] = map[chan string]struct{}{}
	}
	h.streams[stream][ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(stream string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams[stream], ch)
}

// publish never blocks; a client that stops reading loses lines.
func (h *hub) publish(stream, line string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for ch := range h.streams[stream] {
		select {
		case ch <- line:
			n++
		default:
		}
	}
	events.Mock.Publish(stream, line, n)
	return n
}

func (h *hub) count(stream string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams[stream])
}

// serveStream holds the request open and writes each published line as one
// event.
func (h *hub) serveStream(w http.ResponseWriter, r *http.Request, stream string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ch := h.subscribe(stream)
	defer h.unsubscribe(stream, ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case line := <-ch:
			if _, err := fmt.Fprint(w, formatEvent(line)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func formatEvent(line string) string {
	var b strings.Builder
	for _, part := range strings.Split(line, "\n") {
		b.WriteString("data: ")
		b.WriteString(part)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
