// Package profile keeps the list of backend connection targets the dashboard
// can be pointed at, which one is active, and the small set of UI preferences
// persisted next to them.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/steamserverui/ssui-console/internal/logging"
)

const (
	// DefaultID names the profile that always exists.
	DefaultID = "default"
	// DefaultURL marks a profile that targets the configured default host.
	DefaultURL = "/"

	storageKey = "ssui-backend-config"
)

var (
	ErrUnknownProfile   = errors.New("unknown backend profile")
	ErrProtectedProfile = errors.New("profile cannot be removed")
)

// Profile is a named backend: base URL plus an optional credential.
type Profile struct {
	ID        string
	BaseURL   string
	AuthToken *string
}

// Token returns the stored credential or "".
func (p Profile) Token() string {
	if p.AuthToken == nil {
		return ""
	}
	return *p.AuthToken
}

// Listener is notified when the active backend changes.
type Listener func(Profile)

// Store holds every profile plus the active id. All mutations are persisted
// immediately when the store was opened with a path.
type Store struct {
	mu         sync.Mutex
	path       string
	active     string
	backends   map[string]Profile
	theme      string
	animations bool

	listeners    map[int]Listener
	nextListener int
}

type backendDoc struct {
	URL   string  `json:"url"`
	Token *string `json:"token"`
}

type configDoc struct {
	Active   string                `json:"active"`
	Backends map[string]backendDoc `json:"backends"`
}

type stateDoc struct {
	BackendConfig *configDoc `json:"ssui-backend-config,omitempty"`
	Theme         string     `json:"theme,omitempty"`
	Animations    *bool      `json:"animations,omitempty"`
}

// New returns an in-memory store containing only the default profile.
func New() *Store {
	return &Store{
		active:     DefaultID,
		backends:   map[string]Profile{DefaultID: {ID: DefaultID, BaseURL: DefaultURL}},
		animations: true,
		listeners:  map[int]Listener{},
	}
}

// Open loads the state file at path. A missing file yields the default store;
// later mutations create it.
func Open(path string) (*Store, error) {
	s := New()
	s.path = path
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	s.apply(doc)
	return s, nil
}

// apply validates a loaded document. The default profile always points at the
// default host and an unknown active id falls back to it.
func (s *Store) apply(doc stateDoc) {
	if doc.Theme != "" {
		s.theme = doc.Theme
	}
	if doc.Animations != nil {
		s.animations = *doc.Animations
	}
	cfg := doc.BackendConfig
	if cfg == nil {
		return
	}
	if def, ok := cfg.Backends[DefaultID]; ok {
		s.backends[DefaultID] = Profile{ID: DefaultID, BaseURL: DefaultURL, AuthToken: cloneToken(def.Token)}
	}
	for id, b := range cfg.Backends {
		if id == DefaultID || strings.TrimSpace(id) == "" {
			continue
		}
		s.backends[id] = Profile{ID: id, BaseURL: b.URL, AuthToken: cloneToken(b.Token)}
	}
	if _, ok := s.backends[cfg.Active]; ok && cfg.Active != "" {
		s.active = cfg.Active
	}
}

// Path returns the backing file, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Active returns the currently active profile.
func (s *Store) Active() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Store) activeLocked() Profile {
	if p, ok := s.backends[s.active]; ok {
		return cloneProfile(p)
	}
	return cloneProfile(s.backends[DefaultID])
}

// ActiveID returns the id of the active profile.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Get returns the profile registered under id.
func (s *Store) Get(id string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.backends[id]
	return cloneProfile(p), ok
}

// Profiles returns all profiles with the default first and the rest by id.
func (s *Store) Profiles() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Profile, 0, len(s.backends))
	for _, p := range s.backends {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID == DefaultID {
			return true
		}
		if out[j].ID == DefaultID {
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Set adds or updates a profile, keeping any token it already had.
func (s *Store) Set(id, url string) {
	s.mu.Lock()
	prev, existed := s.backends[id]
	s.backends[id] = Profile{ID: id, BaseURL: url, AuthToken: prev.AuthToken}
	changed := id == s.active && existed && prev.BaseURL != url
	active := s.activeLocked()
	s.saveLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if changed {
		notify(listeners, active)
	}
}

// Add registers a new profile under a generated id and returns it.
func (s *Store) Add(url string) Profile {
	id := "backend-" + uuid.NewString()[:8]
	s.Set(id, url)
	p, _ := s.Get(id)
	return p
}

// SetActive switches the active backend. Unknown ids are ignored and false is
// returned.
func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	if _, ok := s.backends[id]; !ok {
		s.mu.Unlock()
		return false
	}
	changed := s.active != id
	s.active = id
	active := s.activeLocked()
	s.saveLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if changed {
		notify(listeners, active)
	}
	return true
}

// UpdateToken stores token on profile id. A nil token logs the profile out.
func (s *Store) UpdateToken(id string, token *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.backends[id]
	if !ok {
		return
	}
	p.AuthToken = cloneToken(token)
	s.backends[id] = p
	s.saveLocked()
}

// ClearToken drops the credential of the active profile.
func (s *Store) ClearToken() {
	s.UpdateToken(s.ActiveID(), nil)
}

// Remove deletes a user-added profile. The default and the active profile are
// protected.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.backends[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, id)
	}
	if id == DefaultID || id == s.active {
		return fmt.Errorf("%w: %s", ErrProtectedProfile, id)
	}
	delete(s.backends, id)
	s.saveLocked()
	return nil
}

// Theme returns the persisted theme name.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme persists the theme name.
func (s *Store) SetTheme(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = name
	s.saveLocked()
}

// Animations reports the persisted animation preference.
func (s *Store) Animations() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animations
}

// SetAnimations persists the animation preference.
func (s *Store) SetAnimations(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animations = enabled
	s.saveLocked()
}

// Subscribe registers fn for active-backend changes. The returned function
// unsubscribes and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) listenersLocked() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func notify(listeners []Listener, p Profile) {
	for _, fn := range listeners {
		fn(p)
	}
}

func (s *Store) saveLocked() {
	if strings.TrimSpace(s.path) == "" {
		return
	}
	cfg := &configDoc{Active: s.active, Backends: make(map[string]backendDoc, len(s.backends))}
	for id, p := range s.backends {
		cfg.Backends[id] = backendDoc{URL: p.BaseURL, Token: p.AuthToken}
	}
	animations := s.animations
	doc := stateDoc{BackendConfig: cfg, Theme: s.theme, Animations: &animations}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logging.Error(fmt.Errorf("encode state: %w", err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		logging.Error(fmt.Errorf("create state directory: %w", err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		logging.Error(fmt.Errorf("save state: %w", err))
	}
}

func cloneToken(token *string) *string {
	if token == nil {
		return nil
	}
	v := *token
	return &v
}

func cloneProfile(p Profile) Profile {
	p.AuthToken = cloneToken(p.AuthToken)
	return p
}

// DefaultStatePath returns the per-user state file location.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", "ssui-console-state.json")
	}
	return filepath.Join(dir, "ssui-console", "state.json")
}
