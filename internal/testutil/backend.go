package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/steamserverui/ssui-console/internal/mock"
)

// StartBackend serves a fresh mock backend over loopback TCP and returns it
// with its base URL. The server is closed when the test ends.
func StartBackend(t *testing.T, opts mock.Options) (*mock.Server, string) {
	t.Helper()
	backend := mock.NewServer(opts)
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

// StartSocketBackend serves a fresh mock backend on a unix socket and returns
// it with a unix:// URL. Tests are skipped where unix sockets are unavailable.
func StartSocketBackend(t *testing.T, opts mock.Options) (*mock.Server, string) {
	t.Helper()
	// Socket paths have a short length limit, so stay out of deep temp dirs.
	baseDir, err := os.MkdirTemp("/tmp", "ssui-console-*")
	if err != nil {
		t.Skipf("skipping: no temp dir for socket: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(baseDir) })
	socket := filepath.Join(baseDir, "ssui.sock")
	l, err := net.Listen("unix", socket)
	if err != nil {
		t.Skipf("skipping: unix sockets unavailable: %v", err)
	}
	backend := mock.NewServer(opts)
	srv := &http.Server{Handler: backend.Handler()}
	go srv.Serve(l)
	t.Cleanup(func() { _ = srv.Close() })
	return backend, "unix://" + socket
}

// WaitFor polls cond until it holds or timeout passes.
func WaitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
