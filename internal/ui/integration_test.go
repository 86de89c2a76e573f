package ui

import (
	"context"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/console"
	"github.com/steamserverui/ssui-console/internal/mock"
)

func TestLoginFlow(t *testing.T) {
	opts := mockOptions()
	opts.RequireAuth = true
	m, _ := newMockModel(t, opts)
	h := NewHarness(m)

	h.processCmd(m.checkAuthCmd())
	if m.view != ViewLogin {
		t.Fatalf("expected login view, got %v", m.view)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.loginForm.err; got != "Username and password are required" {
		t.Fatalf("unexpected form error %q", got)
	}

	m.loginForm.inputs[0].SetValue("admin")
	m.loginForm.inputs[1].SetValue("wrong")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != ViewLogin {
		t.Fatalf("bad credentials should stay on login")
	}
	if got := m.loginForm.err; got != "Invalid credentials" {
		t.Fatalf("unexpected login error %q", got)
	}
	if m.loading {
		t.Fatalf("expected loading cleared after failure")
	}

	m.loginForm.inputs[1].SetValue("secret")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != ViewHome {
		t.Fatalf("expected home view after login, got %v", m.view)
	}
	if !strings.HasPrefix(m.infoMsg, "Signed in as admin") {
		t.Fatalf("unexpected info %q", m.infoMsg)
	}
	if m.profiles.Active().AuthToken == nil {
		t.Fatalf("expected the session token to be stored")
	}
	if !m.sscmEnabled {
		t.Fatalf("expected console commands to be detected after login")
	}

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.view != ViewLogin {
		t.Fatalf("expected logout to show login, got %v", m.view)
	}
	if m.profiles.Active().AuthToken != nil {
		t.Fatalf("expected logout to drop the token")
	}
}

func TestRestoreBackupFlow(t *testing.T) {
	m, server := newMockModel(t, mockOptions())
	h := NewHarness(m)

	backups, err := m.client.Backups(context.Background(), 0)
	if err != nil {
		t.Fatalf("backups: %v", err)
	}
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindBackups, Data: backups}})
	h.Send(tea.KeyMsg{Type: tea.KeyF4})
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != ModeConfirm {
		t.Fatalf("expected confirmation, got mode %v", m.mode)
	}
	h.Send(keyRunes("y"))

	if got := server.Restored(); !reflect.DeepEqual(got, []int{8}) {
		t.Fatalf("expected backup 8 restored, got %v", got)
	}
	if m.infoMsg != "Backup 8 restored successfully" {
		t.Fatalf("unexpected info %q", m.infoMsg)
	}
	if m.loading {
		t.Fatalf("expected loading cleared")
	}
}

func TestRestoreMissingBackupShowsServerMessage(t *testing.T) {
	m, _ := newMockModel(t, mockOptions())
	h := NewHarness(m)
	h.processCmd(m.restoreBackupCmd(42))
	if m.errMsg != "Backup 42 not found" {
		t.Fatalf("unexpected error %q", m.errMsg)
	}
}

func TestServerActions(t *testing.T) {
	m, server := newMockModel(t, mockOptions())
	h := NewHarness(m)

	h.Send(keyRunes("s"))
	if !server.Running() {
		t.Fatalf("expected the server to start")
	}
	if m.infoMsg != "Server started." {
		t.Fatalf("unexpected info %q", m.infoMsg)
	}
	h.Send(keyRunes("x"))
	if server.Running() {
		t.Fatalf("expected the server to stop")
	}
	if m.infoMsg != "Server stopped." {
		t.Fatalf("unexpected info %q", m.infoMsg)
	}
}

func TestSettingSaveFlow(t *testing.T) {
	m, server := newMockModel(t, mockOptions())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyF6})
	l := m.lists[TabSettings]
	idx := l.IndexOf("ServerName")
	if idx < 0 {
		t.Fatalf("expected ServerName in settings")
	}
	l.Cursor = idx
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != ModeSettingForm || m.settingForm == nil {
		t.Fatalf("expected setting form, got mode %v", m.mode)
	}
	m.settingForm.inputs[0].SetValue("Lab Station")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if got, _ := server.Setting("ServerName"); got != "Lab Station" {
		t.Fatalf("expected saved name, got %v", got)
	}
	if m.infoMsg != "Updated ServerName successfully" {
		t.Fatalf("unexpected notice %q", m.infoMsg)
	}
	if m.mode != ModeNormal {
		t.Fatalf("expected form closed")
	}
}

func TestSettingFormRejectsInvalidNumber(t *testing.T) {
	m, server := newMockModel(t, mockOptions())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyF6})
	l := m.lists[TabSettings]
	l.Cursor = l.IndexOf("ServerMaxPlayers")
	before, _ := server.Setting("ServerMaxPlayers")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	m.settingForm.inputs[0].SetValue("many")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.settingForm == nil || m.settingForm.err == "" {
		t.Fatalf("expected a validation error on the form")
	}
	if after, _ := server.Setting("ServerMaxPlayers"); after != before {
		t.Fatalf("invalid value should not reach the backend")
	}
}

func TestConsoleCommandEcho(t *testing.T) {
	m, server := newMockModel(t, mockOptions())
	h := NewHarness(m)

	h.processCmd(m.sscmEnabledCmd())
	h.Send(keyRunes(":"))
	m.prompt.input.SetValue("say hi")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if got := server.Commands(); !reflect.DeepEqual(got, []string{"say hi"}) {
		t.Fatalf("unexpected commands %v", got)
	}
	rows := m.panels[TabConsole].Rows()
	if len(rows) != 1 || rows[0].Text != "[SSCM] Command sent: say hi" || rows[0].Class != console.ClassNotice {
		t.Fatalf("unexpected console rows %+v", rows)
	}
}

func TestSetupWizardFlow(t *testing.T) {
	m, server := newMockModel(t, mock.Options{})
	h := NewHarness(m)

	m.setView(ViewLogin)
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.view != ViewSetup || m.setupForm.step.ID != "welcome" {
		t.Fatalf("expected the welcome step")
	}
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.setupForm.step.ID != "server_name" {
		t.Fatalf("expected server_name, got %s", m.setupForm.step.ID)
	}
	m.setupForm.inputs[0].SetValue("Wizard Base")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	m.setupForm.inputs[0].SetValue("yes")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	m.setupForm.inputs[0].SetValue("no")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.setupForm.step.ID != "admin_account" {
		t.Fatalf("expected admin_account, got %s", m.setupForm.step.ID)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if m.setupForm.err != "Username and password are required" {
		t.Fatalf("unexpected account error %q", m.setupForm.err)
	}
	m.setupForm.inputs[0].SetValue("root")
	m.setupForm.inputs[1].SetValue("hunter2")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.view != ViewLogin {
		t.Fatalf("expected login after finalize, got %v", m.view)
	}
	if got, _ := server.Setting("ServerName"); got != "Wizard Base" {
		t.Fatalf("unexpected server name %v", got)
	}
	if got, _ := server.Setting("ServerVisible"); got != true {
		t.Fatalf("expected visibility saved as a boolean, got %v", got)
	}
	if got, _ := server.Setting("IsDiscordEnabled"); got != false {
		t.Fatalf("expected discord disabled, got %v", got)
	}
}

func TestSwitchBackendFlow(t *testing.T) {
	m, _ := newMockModel(t, mockOptions())
	h := NewHarness(m)

	target, err := m.client.ResolveFor(m.profiles.Active(), "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	m.profiles.Set("lab", strings.TrimRight(target.URL, "/"))

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlB})
	m.backendList.Cursor = m.backendList.IndexOf("lab")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.profiles.ActiveID() != "lab" {
		t.Fatalf("expected lab active, got %s", m.profiles.ActiveID())
	}
	if m.view != ViewHome {
		t.Fatalf("expected home view, got %v", m.view)
	}
	if !strings.HasPrefix(m.infoMsg, "Switched to lab") {
		t.Fatalf("unexpected info %q", m.infoMsg)
	}
}
