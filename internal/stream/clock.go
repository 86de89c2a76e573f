package stream

import (
	"sync/atomic"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules reconnect callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock uses the runtime timers.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Gate is an ownership flag shared between the UI goroutine, which flips it
// when views change, and stream goroutines, which read it before reconnecting.
type Gate struct {
	active atomic.Bool
}

// NewGate returns a gate in the given state.
func NewGate(active bool) *Gate {
	g := &Gate{}
	g.active.Store(active)
	return g
}

// Set updates the gate.
func (g *Gate) Set(active bool) {
	g.active.Store(active)
}

// Active reports the gate state; it has the Config.Owner signature.
func (g *Gate) Active() bool {
	return g.active.Load()
}
