package testutil

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/steamserverui/ssui-console/internal/mock"
)

func TestStartBackendServesStatus(t *testing.T) {
	_, url := StartBackend(t, mock.Options{})
	resp, err := http.Get(url + "/api/v2/server/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var status struct {
		UUID string `json:"uuid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.UUID != "preview" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStartSocketBackendURL(t *testing.T) {
	_, url := StartSocketBackend(t, mock.Options{})
	if !strings.HasPrefix(url, "unix:///tmp/") {
		t.Fatalf("unexpected socket url %q", url)
	}
	socket := strings.TrimPrefix(url, "unix://")
	client := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		},
	}}
	resp, err := client.Get("http://unix/api/v2/server/status")
	if err != nil {
		t.Fatalf("get over socket: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestWaitFor(t *testing.T) {
	start := time.Now()
	WaitFor(t, time.Second, "a short delay", func() bool {
		return time.Since(start) > 10*time.Millisecond
	})
}
