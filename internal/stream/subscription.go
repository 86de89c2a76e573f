// Package stream consumes the backend's server-sent event feeds. A
// Subscription keeps one feed connected on a best-effort basis: it reconnects
// after a fixed delay for as long as its owner is active, and follows the
// active backend profile when it changes.
package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/profile"
)

// State is the connection state of a Subscription.
type State int

const (
	Disconnected State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return "disconnected"
	}
}

// Kind identifies what an Event reports.
type Kind int

const (
	KindOpen Kind = iota
	KindMessage
	KindError
)

// Event is delivered to the subscription's handler.
type Event struct {
	Stream  string
	Kind    Kind
	Data    string
	Err     error
	Backend string
}

// Dialer opens an event-stream body for endpoint on profile p.
type Dialer interface {
	Stream(ctx context.Context, p profile.Profile, endpoint string) (io.ReadCloser, error)
}

// Profiles is the part of the profile store a subscription follows.
type Profiles interface {
	Active() profile.Profile
	Subscribe(profile.Listener) func()
}

// Config parameterises a Subscription.
type Config struct {
	// Name identifies the stream in events and traces; defaults to Endpoint.
	Name           string
	Endpoint       string
	ReconnectDelay time.Duration
	// Owner reports whether the view owning this stream is active. Reconnects
	// are only scheduled while it returns true. Nil means always.
	Owner   func() bool
	Handler func(Event)
	Clock   Clock
}

var errStreamEnded = errors.New("stream ended")

// Subscription owns at most one live connection at a time.
type Subscription struct {
	cfg      Config
	dialer   Dialer
	profiles Profiles

	mu          sync.Mutex
	state       State
	gen         uint64
	cancel      context.CancelFunc
	timer       Timer
	closed      bool
	unsubscribe func()
	backend     string
}

// New prepares a subscription in the Disconnected state. Nothing is dialled
// until Connect is called.
func New(dialer Dialer, profiles Profiles, cfg Config) *Subscription {
	if cfg.Name == "" {
		cfg.Name = cfg.Endpoint
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	return &Subscription{cfg: cfg, dialer: dialer, profiles: profiles}
}

// Name returns the configured stream name.
func (s *Subscription) Name() string {
	return s.cfg.Name
}

// State returns the current connection state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Closed reports whether Close has been called.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Connect dials the stream. It is a no-op unless the subscription is
// Disconnected and has not been closed.
func (s *Subscription) Connect() {
	s.mu.Lock()
	if s.closed || s.state != Disconnected {
		s.mu.Unlock()
		return
	}
	if s.unsubscribe == nil {
		s.unsubscribe = s.profiles.Subscribe(s.onBackendChange)
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	gen := s.gen
	p := s.profiles.Active()
	s.backend = p.ID
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = Connecting
	s.mu.Unlock()

	events.Stream.Connect(s.cfg.Name, p.BaseURL+s.cfg.Endpoint, int(gen))
	go s.run(ctx, gen, p)
}

func (s *Subscription) run(ctx context.Context, gen uint64, p profile.Profile) {
	body, err := s.dialer.Stream(ctx, p, s.cfg.Endpoint)
	if err != nil {
		s.fail(gen, err)
		return
	}
	defer body.Close()
	go func() {
		<-ctx.Done()
		body.Close()
	}()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = Open
	s.mu.Unlock()
	events.Stream.Open(s.cfg.Name, p.BaseURL+s.cfg.Endpoint)
	s.emit(Event{Kind: KindOpen, Backend: p.ID})

	dec := NewDecoder(body)
	for {
		msg, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errStreamEnded
			}
			s.fail(gen, err)
			return
		}
		if !s.current(gen) {
			return
		}
		s.emit(Event{Kind: KindMessage, Data: msg.Data, Backend: p.ID})
	}
}

func (s *Subscription) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.gen
}

// fail moves a live generation to Disconnected and schedules at most one
// reconnect for it.
func (s *Subscription) fail(gen uint64, err error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = Disconnected
	backend := s.backend
	scheduled := s.owned()
	if scheduled {
		s.timer = s.cfg.Clock.AfterFunc(s.cfg.ReconnectDelay, func() { s.reconnect(gen) })
	}
	s.mu.Unlock()

	events.Stream.Disconnected(s.cfg.Name, err)
	if scheduled {
		events.Stream.ReconnectScheduled(s.cfg.Name, s.cfg.ReconnectDelay)
	} else {
		events.Stream.Abandoned(s.cfg.Name)
	}
	s.emit(Event{Kind: KindError, Err: err, Backend: backend})
}

func (s *Subscription) reconnect(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.state != Disconnected {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	owned := s.owned()
	s.mu.Unlock()
	if !owned {
		events.Stream.Abandoned(s.cfg.Name)
		return
	}
	s.Connect()
}

func (s *Subscription) owned() bool {
	return s.cfg.Owner == nil || s.cfg.Owner()
}

// onBackendChange replaces a live connection with one against the new
// backend. Idle or abandoned subscriptions are left alone; a pending
// reconnect already dials whatever profile is active when it fires.
func (s *Subscription) onBackendChange(p profile.Profile) {
	s.mu.Lock()
	if s.closed || s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	from := s.backend
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = Disconnected
	s.mu.Unlock()

	events.Stream.BackendSwitch(s.cfg.Name, from, p.ID)
	s.Connect()
}

// Close tears the subscription down from any state. No connection attempt
// happens afterwards, including one whose timer has already been armed.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = Disconnected
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	events.Stream.Closed(s.cfg.Name)
}

func (s *Subscription) emit(evt Event) {
	if s.cfg.Handler == nil {
		return
	}
	evt.Stream = s.cfg.Name
	s.cfg.Handler(evt)
}
