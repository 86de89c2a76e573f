package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/mock"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/stream"
	"github.com/steamserverui/ssui-console/internal/testutil"
)

// idleDialer accepts every stream and never sends anything.
type idleDialer struct {
	mu    sync.Mutex
	dials map[string]int
}

func newIdleDialer() *idleDialer {
	return &idleDialer{dials: map[string]int{}}
}

func (d *idleDialer) Stream(ctx context.Context, p profile.Profile, endpoint string) (io.ReadCloser, error) {
	d.mu.Lock()
	d.dials[endpoint]++
	d.mu.Unlock()
	r, w := io.Pipe()
	go func() {
		<-ctx.Done()
		w.Close()
	}()
	return r, nil
}

func (d *idleDialer) count(endpoint string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[endpoint]
}

func (d *idleDialer) waitFor(t *testing.T, endpoint string, n int) {
	t.Helper()
	testutil.WaitFor(t, 2*time.Second, fmt.Sprintf("%d dials of %s", n, endpoint), func() bool {
		return d.count(endpoint) >= n
	})
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return true }

// frozenClock never fires reconnect timers.
type frozenClock struct{}

func (frozenClock) AfterFunc(time.Duration, func()) stream.Timer { return stoppedTimer{} }

// fakeNow is a settable clock for notification expiry.
type fakeNow struct {
	at time.Time
}

func (f *fakeNow) now() time.Time          { return f.at }
func (f *fakeNow) advance(d time.Duration) { f.at = f.at.Add(d) }

func newTestModel(t *testing.T, client *api.Client) (*Model, *idleDialer, *fakeNow) {
	t.Helper()
	if client == nil {
		client = api.NewClient(profile.New(), "http://127.0.0.1:1")
	}
	client.Profiles().SetAnimations(false)
	dialer := newIdleDialer()
	m := NewModel(Options{
		Client: client,
		Dialer: dialer,
		Clock:  frozenClock{},
		Width:  100,
		Height: 24,
	})
	clock := &fakeNow{at: time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)}
	m.now = clock.now
	m.tick = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	m.filterCursor.SetMode(cursor.CursorStatic)
	t.Cleanup(m.Close)
	return m, dialer, clock
}

func newMockModel(t *testing.T, opts mock.Options) (*Model, *mock.Server) {
	t.Helper()
	backend, url := testutil.StartBackend(t, opts)
	m, _, _ := newTestModel(t, api.NewClient(profile.New(), url))
	return m, backend
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mockOptions() mock.Options {
	return mock.Options{Username: "admin", Password: "secret", SSCM: true}
}
