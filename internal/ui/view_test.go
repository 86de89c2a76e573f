package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/stream"
)

func TestViewShowsTabsAndEmptyPanel(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	view := ansi.Strip(m.View())
	for _, want := range []string{"SteamServerUI", "1 Console", "4 Backups", "6 Settings", "Waiting for data…", "s start"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestStatusBarNamesActiveBackend(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.profiles.Set("lab", "http://10.0.0.5:8443")
	if !m.profiles.SetActive("lab") {
		t.Fatalf("expected lab to activate")
	}
	for _, tab := range []Tab{TabConsole, TabBackups, TabSettings} {
		m.tab = tab
		view := ansi.Strip(m.View())
		if !strings.Contains(view, "lab (http://10.0.0.5:8443)") {
			t.Fatalf("expected active backend on tab %d:\n%s", tab, view)
		}
	}
}

func TestViewFitsTerminalHeight(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.startPanel(TabConsole)
	h := NewHarness(m)
	for i := 0; i < 100; i++ {
		h.Send(streamEventMsg{event: stream.Event{Stream: "/console", Kind: stream.KindMessage, Data: "line"}})
	}
	lines := strings.Split(h.View(), "\n")
	if len(lines) > 24 {
		t.Fatalf("expected at most 24 lines, got %d", len(lines))
	}
}

func TestViewMarksNotifiedTab(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.startPanel(TabEvents)
	h := NewHarness(m)
	h.Send(streamEventMsg{event: stream.Event{Stream: "/events", Kind: stream.KindMessage, Data: "Player Bob is ready"}})
	view := ansi.Strip(h.View())
	if !strings.Contains(view, "2 Events •") {
		t.Fatalf("expected notified events tab in view:\n%s", view)
	}
}

func TestViewShowsBackupDetail(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindBackups, Data: sampleBackups()}})
	h.Send(tea.KeyMsg{Type: tea.KeyF4})
	h.Send(tea.KeyMsg{Type: tea.KeyEnd})
	view := ansi.Strip(h.View())
	for _, want := range []string{"Backup #1", "World:    world(1).xml", "enter restores this backup"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestViewShowsErrorLine(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.errMsg = "Backup 42 not found"
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Error: Backup 42 not found") {
		t.Fatalf("expected error line in view:\n%s", view)
	}
}

func TestViewInfoExpires(t *testing.T) {
	m, _, clock := newTestModel(t, nil)
	m.setInfo("Server started.")
	if !strings.Contains(ansi.Strip(m.View()), "Server started.") {
		t.Fatalf("expected info in view")
	}
	clock.advance(infoDuration + time.Second)
	if strings.Contains(ansi.Strip(m.View()), "Server started.") {
		t.Fatalf("expected info to expire")
	}
}

func TestViewLoginForm(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.setView(ViewLogin)
	view := ansi.Strip(m.View())
	for _, want := range []string{"Sign in", "Username:", "Password:", "Backend: default (http://127.0.0.1:1"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestViewSettingsLoading(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.tab = TabSettings
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Loading…") {
		t.Fatalf("expected loading placeholder in view:\n%s", view)
	}
}
