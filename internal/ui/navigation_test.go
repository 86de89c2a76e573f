package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
)

func sampleBackups() []api.Backup {
	return []api.Backup{
		{Index: 3, BinFile: "3.save"},
		{Index: 2, BinFile: "2.save"},
		{Index: 1, BinFile: "world(1).bin", XMLFile: "world(1).xml"},
	}
}

func TestTabKeysCycleTabs(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabEvents {
		t.Fatalf("expected events tab, got %v", m.tab)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyShiftTab})
	h.Send(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != TabSettings {
		t.Fatalf("expected shift+tab to wrap to settings, got %v", m.tab)
	}
}

func TestFunctionAndDigitKeysSelectTabs(t *testing.T) {
	m, dialer, _ := newTestModel(t, nil)
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyF4})
	if m.tab != TabBackups {
		t.Fatalf("expected backups tab, got %v", m.tab)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyF1})
	h.Send(keyRunes("3"))
	if m.tab != TabLogs {
		t.Fatalf("expected logs tab, got %v", m.tab)
	}
	dialer.waitFor(t, "/logs/warn", 1)
}

func TestDigitsFilterListTabs(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(tea.KeyMsg{Type: tea.KeyF4})
	h.Send(keyRunes("2"))
	if m.tab != TabBackups {
		t.Fatalf("digits on a list should filter, got tab %v", m.tab)
	}
	if got := m.lists[TabBackups].Filter; got != "2" {
		t.Fatalf("expected filter 2, got %q", got)
	}
}

func TestQuitOnlyFromPanels(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	if cmd := m.handleKeyMsg(keyRunes("q")); cmd == nil {
		t.Fatalf("expected q to quit from the console")
	} else if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	m.showTab(TabPlayers)
	m.handleKeyMsg(keyRunes("q"))
	if got := m.lists[TabPlayers].Filter; got != "q" {
		t.Fatalf("expected q to filter players, got %q", got)
	}
}

func TestEnterOnBackupAsksForConfirmation(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindBackups, Data: sampleBackups()}})
	h.Send(tea.KeyMsg{Type: tea.KeyF4})
	h.Send(tea.KeyMsg{Type: tea.KeyDown})
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != ModeConfirm || m.confirm == nil {
		t.Fatalf("expected a confirmation prompt, mode %v", m.mode)
	}
	if m.confirm.question != "Restore backup #2 (2.save)?" {
		t.Fatalf("unexpected question %q", m.confirm.question)
	}
	h.Send(keyRunes("n"))
	if m.mode != ModeNormal || m.confirm != nil {
		t.Fatalf("expected n to cancel the prompt")
	}
	if m.loading {
		t.Fatalf("cancelled restore should not start loading")
	}
}

func TestCursorWrapsInLists(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindBackups, Data: sampleBackups()}})
	h.Send(tea.KeyMsg{Type: tea.KeyF4})
	h.Send(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.lists[TabBackups].Cursor; got != 2 {
		t.Fatalf("expected cursor to wrap to 2, got %d", got)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.lists[TabBackups].Cursor; got != 0 {
		t.Fatalf("expected cursor to wrap to 0, got %d", got)
	}
}

func TestEscapeClearsFilterBeforeLeavingBackends(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlB})
	if m.view != ViewBackends {
		t.Fatalf("expected backends view, got %v", m.view)
	}
	if len(m.backendList.Items) == 0 {
		t.Fatalf("expected the default backend to be listed")
	}
	h.Send(keyRunes("zz"))
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != ViewBackends {
		t.Fatalf("first escape should only clear the filter")
	}
	if m.backendList.Filter != "" {
		t.Fatalf("expected filter cleared, got %q", m.backendList.Filter)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != ViewHome {
		t.Fatalf("expected home view, got %v", m.view)
	}
}

func TestAddBackendFromForm(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlB})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.mode != ModeBackendForm {
		t.Fatalf("expected backend form, got mode %v", m.mode)
	}
	m.backendForm.inputs[0].SetValue("ftp://nope")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.backendForm == nil || m.backendForm.err == "" {
		t.Fatalf("expected a URL validation error")
	}
	m.backendForm.inputs[0].SetValue("unix:///run/ssui.sock")
	m.backendForm.inputs[1].SetValue("local")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != ModeNormal {
		t.Fatalf("expected form to close, mode %v", m.mode)
	}
	if idx := m.backendList.IndexOf("local"); idx < 0 {
		t.Fatalf("expected the new backend in the list")
	}
	if p, ok := m.profiles.Get("local"); !ok || p.BaseURL != "unix:///run/ssui.sock" {
		t.Fatalf("unexpected stored profile %+v", p)
	}
}

func TestRemoveActiveBackendIsRefused(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	h := NewHarness(m)
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlB})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.errMsg == "" {
		t.Fatalf("expected an error removing the active backend")
	}
	if len(m.backendList.Items) != 1 {
		t.Fatalf("expected the backend to remain")
	}
}
