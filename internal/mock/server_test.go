package mock

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(opts)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func doJSON(t *testing.T, method, url, token string, in interface{}, out interface{}) int {
	t.Helper()
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = strings.NewReader(string(data))
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	_, srv := newTestServer(t, Options{Username: "admin", Password: "pw", RequireAuth: true})
	if status := doJSON(t, "GET", srv.URL+"/api/v2/auth/check", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}

	var bad map[string]string
	if status := doJSON(t, "POST", srv.URL+"/auth/login", "", credentials{Username: "admin", Password: "nope"}, &bad); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", status)
	}
	if bad["error"] != "Invalid credentials" {
		t.Fatalf("unexpected error body %#v", bad)
	}

	var ok map[string]string
	if status := doJSON(t, "POST", srv.URL+"/auth/login", "", credentials{Username: "admin", Password: "pw"}, &ok); status != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d", status)
	}
	if ok["token"] == "" {
		t.Fatalf("expected token in %#v", ok)
	}
	if status := doJSON(t, "GET", srv.URL+"/api/v2/auth/check", ok["token"], nil, nil); status != http.StatusOK {
		t.Fatalf("expected token to authenticate, got %d", status)
	}
	var who map[string]string
	doJSON(t, "GET", srv.URL+"/api/v2/auth/whoami", ok["token"], nil, &who)
	if who["username"] != "admin" {
		t.Fatalf("unexpected whoami %#v", who)
	}
}

func TestStartMakesPlayersVisible(t *testing.T) {
	s, srv := newTestServer(t, Options{})
	var none map[string]string
	doJSON(t, "GET", srv.URL+"/api/v2/server/status/connectedplayers", "", nil, &none)
	if none["status"] == "" {
		t.Fatalf("expected non-list body while stopped, got %#v", none)
	}

	resp, err := http.Get(srv.URL + "/start")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	text, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(text) != "Server started." || !s.Running() {
		t.Fatalf("unexpected start result %q running=%v", text, s.Running())
	}

	var players []map[string]Player
	doJSON(t, "GET", srv.URL+"/api/v2/server/status/connectedplayers", "", nil, &players)
	if len(players) != 2 || players[0]["c1"].Username != "BobTheBuilder" {
		t.Fatalf("unexpected players %#v", players)
	}
}

func TestBackupsLimitAndRestore(t *testing.T) {
	s, srv := newTestServer(t, Options{})
	var backups []Backup
	doJSON(t, "GET", srv.URL+"/api/v2/backups?limit=3", "", nil, &backups)
	if len(backups) != 3 || backups[0].Index != 8 {
		t.Fatalf("unexpected backups %#v", backups)
	}

	var missing map[string]string
	if status := doJSON(t, "GET", srv.URL+"/api/v2/backups/restore?index=99", "", nil, &missing); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	resp, err := http.Get(srv.URL + "/api/v2/backups/restore?index=2")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	resp.Body.Close()
	if got := s.Restored(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected restore of 2, got %v", got)
	}
}

func TestSaveUpdatesSingleField(t *testing.T) {
	s, srv := newTestServer(t, Options{})
	var out map[string]string
	doJSON(t, "POST", srv.URL+"/api/v2/settings/save", "", map[string]interface{}{"ServerName": "Lab"}, &out)
	if out["status"] != "success" {
		t.Fatalf("unexpected save body %#v", out)
	}
	if v, _ := s.Setting("ServerName"); v != "Lab" {
		t.Fatalf("expected ServerName=Lab, got %v", v)
	}

	doJSON(t, "POST", srv.URL+"/api/v2/saveconfig", "", map[string]interface{}{"Nope": 1}, &out)
	if out["status"] != "error" || !strings.Contains(out["message"], "Nope") {
		t.Fatalf("expected unknown-field error, got %#v", out)
	}
}

func TestSSCMDisabledIsForbidden(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	if status := doJSON(t, "GET", srv.URL+"/api/v2/SSCM/enabled", "", nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
}

func TestStreamDeliversPublishedLines(t *testing.T) {
	s, srv := newTestServer(t, Options{})
	resp, err := http.Get(srv.URL + StreamEvents)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Subscribers(StreamEvents) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stream never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := s.Publish(StreamEvents, "two\nlines"); n != 1 {
		t.Fatalf("expected one receiver, got %d", n)
	}

	r := bufio.NewReader(resp.Body)
	var got []string
	for len(got) < 3 {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, strings.TrimRight(line, "\n"))
	}
	want := []string{"data: two", "data: lines", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFinalizeEnablesAuth(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	var out map[string]string
	if status := doJSON(t, "POST", srv.URL+"/api/v2/auth/setup/finalize", "", nil, &out); status != http.StatusBadRequest {
		t.Fatalf("expected finalize without admin to fail, got %d", status)
	}
	doJSON(t, "POST", srv.URL+"/api/v2/auth/setup/register", "", credentials{Username: "root", Password: "pw"}, &out)
	if status := doJSON(t, "POST", srv.URL+"/api/v2/auth/setup/finalize", "", nil, &out); status != http.StatusOK {
		t.Fatalf("expected finalize to succeed, got %d", status)
	}
	if status := doJSON(t, "GET", srv.URL+"/api/v2/server/status", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected auth after finalize, got %d", status)
	}
}
