package backend

import (
	"context"
	"sync"
	"time"
)

// minFetchGap spaces consecutive fetches of one kind. Server actions call
// Refresh right after they complete, and a burst of them (start, then a
// restore) should not reach the backend faster than this.
const minFetchGap = 250 * time.Millisecond

// fetchGate hands out fetch slots for one poller. Each slot starts at least
// gap after the previous one; a caller whose slot lies in the future waits
// for it unless the watcher is stopped first.
type fetchGate struct {
	gap   time.Duration
	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	last time.Time
}

func newFetchGate(gap time.Duration) *fetchGate {
	return &fetchGate{gap: gap, now: time.Now, after: time.After}
}

// reserve claims the next slot and returns how long the caller must wait
// for it.
func (g *fetchGate) reserve() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	slot := now
	if !g.last.IsZero() {
		if earliest := g.last.Add(g.gap); earliest.After(now) {
			slot = earliest
		}
	}
	g.last = slot
	return slot.Sub(now)
}

// wait blocks until the caller's slot opens. It returns ctx.Err() when the
// context ends first.
func (g *fetchGate) wait(ctx context.Context) error {
	if g == nil || g.gap <= 0 {
		return ctx.Err()
	}
	delay := g.reserve()
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.after(delay):
		return nil
	}
}
