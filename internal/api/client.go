// Package api is the HTTP side of the dashboard: it resolves the active
// backend profile into a base URL, attaches credentials, classifies responses
// and exposes typed helpers for the SteamServerUI endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/profile"
)

const unixScheme = "unix://"

// maxErrorBody bounds how much of a failed response is read for a message.
const maxErrorBody = 64 << 10

var (
	// ErrAuthRequired is returned for 401 responses.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNoBackend means the active profile targets the default host but none
	// was configured.
	ErrNoBackend = errors.New("no default backend url configured")
)

// APIError describes any other non-2xx response.
type APIError struct {
	Status     int
	StatusText string
	// Message carries the server-provided "error" or "message" field, if any.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.Status, e.StatusText)
}

// NetworkError wraps transport failures.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client issues requests against whichever profile is active at call time.
type Client struct {
	profiles   *profile.Store
	auth       *AuthStore
	defaultURL string

	mu      sync.Mutex
	jar     *sessionJar
	clients map[string]*http.Client
}

// NewClient builds a client over profiles. defaultURL is used for profiles
// whose base URL is "/".
func NewClient(profiles *profile.Store, defaultURL string) *Client {
	return &Client{
		profiles:   profiles,
		auth:       NewAuthStore(),
		defaultURL: strings.TrimRight(strings.TrimSpace(defaultURL), "/"),
		jar:        &sessionJar{jar: newJar()},
		clients:    map[string]*http.Client{},
	}
}

func newJar() http.CookieJar {
	jar, _ := cookiejar.New(nil)
	return jar
}

// Profiles exposes the backing profile store.
func (c *Client) Profiles() *profile.Store {
	return c.profiles
}

// Auth exposes the shared authentication state.
func (c *Client) Auth() *AuthStore {
	return c.auth
}

// NormalizeEndpoint returns endpoint with exactly one leading slash. The empty
// endpoint stays empty.
func NormalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	return "/" + strings.TrimLeft(endpoint, "/")
}

// Target is a resolved request destination.
type Target struct {
	URL    string
	client *http.Client
}

// Resolve turns endpoint into a full URL against the active profile.
func (c *Client) Resolve(endpoint string) (Target, error) {
	return c.ResolveFor(c.profiles.Active(), endpoint)
}

// ResolveFor is Resolve against an explicit profile.
func (c *Client) ResolveFor(p profile.Profile, endpoint string) (Target, error) {
	base := strings.TrimSpace(p.BaseURL)
	if base == "" || base == profile.DefaultURL {
		base = c.defaultURL
	}
	if base == "" {
		return Target{}, ErrNoBackend
	}
	if strings.HasPrefix(base, unixScheme) {
		socket := strings.TrimPrefix(base, unixScheme)
		return Target{URL: "http://unix" + NormalizeEndpoint(endpoint), client: c.httpClient(socket)}, nil
	}
	return Target{URL: strings.TrimRight(base, "/") + NormalizeEndpoint(endpoint), client: c.httpClient("")}, nil
}

// httpClient returns a cached client; socket selects a unix-socket dialer.
func (c *Client) httpClient(socket string) *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hc, ok := c.clients[socket]; ok {
		return hc
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if socket != "" {
		transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		}
	}
	hc := &http.Client{Transport: transport, Jar: c.jar}
	c.clients[socket] = hc
	return hc
}

// ResetSession forgets cookies for every backend.
func (c *Client) ResetSession() {
	c.jar.reset()
}

// sessionJar is a cookie jar that can be swapped out on logout while clients
// keep a reference to it.
type sessionJar struct {
	mu  sync.Mutex
	jar http.CookieJar
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = newJar()
}

// Do sends a request and returns the raw response. in, when non-nil, is sent
// as JSON.
func (c *Client) Do(ctx context.Context, method, endpoint string, in interface{}) (*http.Response, error) {
	return c.do(ctx, c.profiles.Active(), method, endpoint, in, nil)
}

// Open starts a long-lived GET against p, used by event streams.
func (c *Client) Open(ctx context.Context, p profile.Profile, endpoint string) (*http.Response, error) {
	return c.do(ctx, p, http.MethodGet, endpoint, nil, map[string]string{
		"Accept":        "text/event-stream",
		"Cache-Control": "no-cache",
	})
}

func (c *Client) do(ctx context.Context, p profile.Profile, method, endpoint string, in interface{}, headers map[string]string) (*http.Response, error) {
	target, err := c.ResolveFor(p, endpoint)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil && method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if token := p.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	events.API.Request(method, target.URL)
	resp, err := target.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: target.URL, Err: err}
	}
	events.API.Response(method, target.URL, resp.StatusCode)
	return resp, nil
}

// JSON performs the request and decodes a 2xx body into out (which may be
// nil).
func (c *Client) JSON(ctx context.Context, method, endpoint string, in, out interface{}) error {
	resp, err := c.Do(ctx, method, endpoint, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.Check(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// Text performs the request and returns a 2xx body verbatim.
func (c *Client) Text(ctx context.Context, method, endpoint string, in interface{}) (string, error) {
	resp, err := c.Do(ctx, method, endpoint, in)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := c.Check(resp); err != nil {
		return "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: resp.Request.URL.String(), Err: err}
	}
	return string(data), nil
}

// Check classifies resp. A 401 also flips the shared auth state.
func (c *Client) Check(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		events.API.AuthRequired(resp.Request.URL.String())
		c.auth.Update(func(s *AuthState) {
			s.IsAuthenticated = false
			s.AuthError = "Unauthorized"
		})
		return ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, StatusText: statusText(resp)}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr.Message = serverMessage(data)
	return apiErr
}

func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// serverMessage extracts {"error": ...} or {"message": ...} from a body.
func serverMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// ServerMessage returns the server-provided message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Stream opens endpoint on p as an event stream and returns the body once the
// backend accepted it. Non-2xx answers are classified like any other call.
func (c *Client) Stream(ctx context.Context, p profile.Profile, endpoint string) (io.ReadCloser, error) {
	resp, err := c.Open(ctx, p, endpoint)
	if err != nil {
		return nil, err
	}
	if err := c.Check(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// IsAuthRequired reports whether err is a 401 from the backend.
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}
