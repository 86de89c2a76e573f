package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/steamserverui/ssui-console/internal/logging/events"
)

// AuthState is derived from the last "am I logged in" probe against the
// active backend.
type AuthState struct {
	IsAuthenticated  bool
	IsAuthenticating bool
	AuthError        string
}

// AuthStore is the shared, observable AuthState.
type AuthStore struct {
	mu        sync.Mutex
	state     AuthState
	listeners map[int]func(AuthState)
	next      int
}

// NewAuthStore returns an unauthenticated store.
func NewAuthStore() *AuthStore {
	return &AuthStore{listeners: map[int]func(AuthState){}}
}

// Get returns a snapshot of the current state.
func (s *AuthStore) Get() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies fn to the state and notifies subscribers.
func (s *AuthStore) Update(fn func(*AuthState)) {
	s.mu.Lock()
	fn(&s.state)
	state := s.state
	listeners := make([]func(AuthState), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(state)
	}
}

// Subscribe registers fn for state changes and returns an unsubscribe func.
func (s *AuthStore) Subscribe(fn func(AuthState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Credentials is the login and admin-registration payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the whoami response.
type User struct {
	Username    string `json:"username"`
	AccessLevel string `json:"accessLevel"`
}

// FinalizeResult is the setup-finalize response.
type FinalizeResult struct {
	Message     string `json:"message"`
	RestartHint string `json:"restart_hint"`
}

// SyncAuthState probes /api/v2/auth/check and records the outcome. It returns
// whether the active backend accepts the current credentials.
func (c *Client) SyncAuthState(ctx context.Context) bool {
	c.auth.Update(func(s *AuthState) { s.IsAuthenticating = true })

	resp, err := c.Do(ctx, http.MethodGet, "/api/v2/auth/check", nil)
	if err != nil {
		c.auth.Update(func(s *AuthState) {
			s.IsAuthenticating = false
			s.AuthError = "Connection error"
		})
		return false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.auth.Update(func(s *AuthState) {
			s.IsAuthenticated = false
			s.IsAuthenticating = false
			s.AuthError = "Authentication required"
		})
		return false
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.auth.Update(func(s *AuthState) {
			s.IsAuthenticating = false
			s.AuthError = fmt.Sprintf("API error: %d %s", resp.StatusCode, statusText(resp))
		})
		return false
	}
	c.auth.Update(func(s *AuthState) {
		s.IsAuthenticated = true
		s.IsAuthenticating = false
		s.AuthError = ""
	})
	return true
}

// SetActiveBackend switches profiles and re-probes authentication. It returns
// false when id is unknown or the probe fails.
func (c *Client) SetActiveBackend(ctx context.Context, id string) bool {
	if !c.profiles.SetActive(id) {
		return false
	}
	active := c.profiles.Active()
	if target, err := c.ResolveFor(active, ""); err == nil {
		events.API.BackendActive(active.ID, target.URL)
	}
	return c.SyncAuthState(ctx)
}

// Login authenticates against the active backend and stores the returned
// token on its profile.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	c.auth.Update(func(s *AuthState) {
		s.IsAuthenticating = true
		s.AuthError = ""
	})

	var out struct {
		Token string `json:"token"`
	}
	err := c.postForm(ctx, "/auth/login", creds, &out, "Authentication failed")
	if err != nil {
		c.auth.Update(func(s *AuthState) {
			s.IsAuthenticated = false
			s.IsAuthenticating = false
			s.AuthError = err.Error()
		})
		return err
	}
	var token *string
	if out.Token != "" {
		token = &out.Token
	}
	c.profiles.UpdateToken(c.profiles.ActiveID(), token)
	c.auth.Update(func(s *AuthState) {
		s.IsAuthenticated = true
		s.IsAuthenticating = false
		s.AuthError = ""
	})
	return nil
}

// Logout forgets the active profile's credentials.
func (c *Client) Logout() {
	c.profiles.ClearToken()
	c.ResetSession()
	c.auth.Update(func(s *AuthState) {
		s.IsAuthenticated = false
		s.AuthError = ""
	})
}

// WhoAmI returns the user the active session belongs to.
func (c *Client) WhoAmI(ctx context.Context) (User, error) {
	var user User
	if err := c.JSON(ctx, http.MethodGet, "/api/v2/auth/whoami", nil, &user); err != nil {
		return User{}, err
	}
	if user.Username == "" {
		return User{}, errors.New("invalid response format: missing username")
	}
	if user.AccessLevel == "" {
		user.AccessLevel = "user"
	}
	return user, nil
}

// RegisterAdmin creates the first admin account during setup.
func (c *Client) RegisterAdmin(ctx context.Context, creds Credentials) error {
	return c.postForm(ctx, "/api/v2/auth/setup/register", creds, nil, "Action failed!")
}

// FinalizeSetup completes the setup wizard.
func (c *Client) FinalizeSetup(ctx context.Context) (FinalizeResult, error) {
	var out FinalizeResult
	if err := c.postForm(ctx, "/api/v2/auth/setup/finalize", nil, &out, "Finalize failed!"); err != nil {
		return FinalizeResult{}, err
	}
	return out, nil
}

// postForm posts in and surfaces the server's error message, or fallback,
// for non-2xx responses. It does not treat 401 as a session failure: the
// login and setup endpoints answer 401 for bad credentials.
func (c *Client) postForm(ctx context.Context, endpoint string, in, out interface{}, fallback string) error {
	if in == nil {
		in = struct{}{}
	}
	resp, err := c.Do(ctx, http.MethodPost, endpoint, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp)
		if apiErr.Message == "" {
			apiErr.Message = fallback
		}
		return &FormError{Message: apiErr.Message, Err: apiErr}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// FormError is a rejected form submission carrying a user-facing message.
type FormError struct {
	Message string
	Err     error
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Unwrap() error {
	return e.Err
}
