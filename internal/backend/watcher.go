package backend

import (
	"context"
	"sync"
	"time"

	"github.com/steamserverui/ssui-console/internal/api"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindStatus Kind = iota
	KindPlayers
	KindBackups
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindPlayers:
		return "players"
	case KindBackups:
		return "backups"
	default:
		return "unknown"
	}
}

// Event conveys updated data or an error from a backend poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// Source is the part of the API client the watcher polls.
type Source interface {
	ServerStatus(ctx context.Context) (api.ServerStatus, error)
	ConnectedPlayers(ctx context.Context) ([]api.Player, error)
	Backups(ctx context.Context, limit int) ([]api.Backup, error)
}

// Intervals sets how often each kind is polled. Zero disables a poller.
type Intervals struct {
	Status  time.Duration
	Players time.Duration
	Backups time.Duration
}

// DefaultIntervals matches the dashboard's refresh cadence.
var DefaultIntervals = Intervals{
	Status:  3500 * time.Millisecond,
	Players: 10 * time.Second,
	Backups: 30 * time.Second,
}

// Watcher polls the active backend at fixed intervals and publishes events.
// Every poll resolves the active profile afresh, so a backend switch is
// picked up on the next tick.
type Watcher struct {
	source      Source
	backupLimit int

	ctx    context.Context
	cancel context.CancelFunc

	events  chan Event
	refresh map[Kind]chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a backend watcher and starts its pollers.
func NewWatcher(source Source, intervals Intervals, backupLimit int) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		source:      source,
		backupLimit: backupLimit,
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan Event, 16),
		refresh:     make(map[Kind]chan struct{}, 3),
	}

	w.start(KindStatus, intervals.Status, func(ctx context.Context) (interface{}, error) {
		return w.source.ServerStatus(ctx)
	})
	w.start(KindPlayers, intervals.Players, func(ctx context.Context) (interface{}, error) {
		return w.source.ConnectedPlayers(ctx)
	})
	w.start(KindBackups, intervals.Backups, func(ctx context.Context) (interface{}, error) {
		return w.source.Backups(ctx, w.backupLimit)
	})

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Refresh asks the poller for kind to fetch now instead of waiting for its
// next tick. Requests made while one is already pending are merged.
func (w *Watcher) Refresh(kind Kind) {
	ch, ok := w.refresh[kind]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Stop cancels the watcher. Pollers exit after their current fetch completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) start(kind Kind, interval time.Duration, fetch func(context.Context) (interface{}, error)) {
	if interval <= 0 {
		return
	}
	gate := newFetchGate(minFetchGap)
	refresh := make(chan struct{}, 1)
	w.refresh[kind] = refresh
	w.wg.Add(1)
	go w.poll(kind, interval, refresh, func(ctx context.Context) (interface{}, error) {
		if err := gate.wait(ctx); err != nil {
			return nil, err
		}
		return fetch(ctx)
	})
}

func (w *Watcher) poll(kind Kind, interval time.Duration, refresh <-chan struct{}, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch(w.ctx)
		evt := Event{Kind: kind, Data: data, Err: err}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		case <-refresh:
			if !emit() {
				return
			}
			ticker.Reset(interval)
		}
	}
}
