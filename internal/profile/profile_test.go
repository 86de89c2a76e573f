package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func strptr(s string) *string { return &s }

func TestNewStoreHasDefaultProfile(t *testing.T) {
	s := New()
	active := s.Active()
	if active.ID != DefaultID || active.BaseURL != DefaultURL {
		t.Fatalf("unexpected default profile: %#v", active)
	}
	if active.AuthToken != nil {
		t.Fatalf("expected no token, got %q", active.Token())
	}
}

func TestSetPreservesExistingToken(t *testing.T) {
	s := New()
	s.Set("lab", "http://lab:8443")
	s.UpdateToken("lab", strptr("secret"))
	s.Set("lab", "http://lab:9443")
	p, ok := s.Get("lab")
	if !ok {
		t.Fatalf("expected lab profile")
	}
	if p.BaseURL != "http://lab:9443" || p.Token() != "secret" {
		t.Fatalf("unexpected profile after update: %#v token=%q", p, p.Token())
	}
}

func TestSetActiveIgnoresUnknownID(t *testing.T) {
	s := New()
	if s.SetActive("missing") {
		t.Fatalf("expected unknown id to be rejected")
	}
	if s.ActiveID() != DefaultID {
		t.Fatalf("expected default to stay active, got %s", s.ActiveID())
	}
}

func TestSubscribeNotifiesOnBackendChangeOnly(t *testing.T) {
	s := New()
	s.Set("lab", "http://lab:8443")
	var seen []string
	unsubscribe := s.Subscribe(func(p Profile) { seen = append(seen, p.ID+"="+p.BaseURL) })

	s.SetActive("lab")
	s.SetActive("lab")
	s.UpdateToken("lab", strptr("t"))
	s.Set("lab", "http://lab:9000")
	s.Set("other", "http://other")

	want := []string{"lab=http://lab:8443", "lab=http://lab:9000"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("expected notifications %v, got %v", want, seen)
	}

	unsubscribe()
	unsubscribe()
	s.SetActive(DefaultID)
	if len(seen) != 2 {
		t.Fatalf("expected no notification after unsubscribe, got %v", seen)
	}
}

func TestRemoveProtectsDefaultAndActive(t *testing.T) {
	s := New()
	s.Set("lab", "http://lab")
	s.SetActive("lab")
	if err := s.Remove(DefaultID); !errors.Is(err, ErrProtectedProfile) {
		t.Fatalf("expected protected error for default, got %v", err)
	}
	if err := s.Remove("lab"); !errors.Is(err, ErrProtectedProfile) {
		t.Fatalf("expected protected error for active, got %v", err)
	}
	if err := s.Remove("nope"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected unknown error, got %v", err)
	}
	s.SetActive(DefaultID)
	if err := s.Remove("lab"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, ok := s.Get("lab"); ok {
		t.Fatalf("expected lab to be gone")
	}
}

func TestAddGeneratesProfileID(t *testing.T) {
	s := New()
	p := s.Add("http://new-host")
	if !strings.HasPrefix(p.ID, "backend-") || p.BaseURL != "http://new-host" {
		t.Fatalf("unexpected generated profile %#v", p)
	}
}

func TestStatePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Set("lab", "http://lab:8443")
	s.UpdateToken("lab", strptr("tok"))
	s.SetActive("lab")
	s.SetTheme("cyberpunkGlow")
	s.SetAnimations(false)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if !strings.Contains(string(data), `"ssui-backend-config"`) {
		t.Fatalf("expected backend config key in state file:\n%s", data)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	active := reopened.Active()
	if active.ID != "lab" || active.Token() != "tok" {
		t.Fatalf("unexpected active profile after reopen: %#v", active)
	}
	if reopened.Theme() != "cyberpunkGlow" || reopened.Animations() {
		t.Fatalf("unexpected preferences: theme=%q animations=%v", reopened.Theme(), reopened.Animations())
	}
}

func TestOpenNormalisesLoadedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"ssui-backend-config":{"active":"ghost","backends":{"default":{"url":"http://evil","token":"d"},"lab":{"url":"http://lab"}}}}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.ActiveID() != DefaultID {
		t.Fatalf("expected fallback to default, got %s", s.ActiveID())
	}
	def, _ := s.Get(DefaultID)
	if def.BaseURL != DefaultURL || def.Token() != "d" {
		t.Fatalf("expected default url reset and token kept, got %#v", def)
	}
	if _, ok := s.Get("lab"); !ok {
		t.Fatalf("expected lab profile to be loaded")
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestProfilesOrdersDefaultFirst(t *testing.T) {
	s := New()
	s.Set("zeta", "http://z")
	s.Set("alpha", "http://a")
	got := s.Profiles()
	if len(got) != 3 || got[0].ID != DefaultID || got[1].ID != "alpha" || got[2].ID != "zeta" {
		t.Fatalf("unexpected order: %#v", got)
	}
}
