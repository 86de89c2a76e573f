package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/console"
	"github.com/steamserverui/ssui-console/internal/logging"
	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/settings"
	"github.com/steamserverui/ssui-console/internal/ui/command"
)

// actionResult is the outcome of a one-shot backend action.
type actionResult struct {
	ID      string
	Info    string
	Err     error
	Refresh []backend.Kind
}

type authCheckedMsg struct {
	ok    bool
	state api.AuthState
}

type loginResultMsg struct {
	user api.User
	err  error
}

type backendSwitchedMsg struct {
	id    string
	ok    bool
	state api.AuthState
}

type catalogLoadedMsg struct {
	catalog []settings.Setting
	err     error
}

type settingSavedMsg struct {
	field  string
	result settings.Result
}

type wizardResultMsg struct {
	step   string
	result settings.Result
}

type sscmEnabledMsg struct {
	enabled bool
}

type sscmResultMsg struct {
	line string
	err  error
}

type clipboardResultMsg struct {
	rows int
	err  error
}

type infoExpiredMsg struct{}

// startLoading marks an action as in flight and starts the spinner when
// animations are enabled.
func (m *Model) startLoading(id, label string) tea.Cmd {
	m.loading = true
	m.pendingID = id
	m.pendingLabel = label
	m.errMsg = ""
	m.forceClearInfo()
	if !m.profiles.Animations() {
		return nil
	}
	return m.spinner.Tick
}

func (m *Model) stopLoading() {
	m.loading = false
	m.pendingID = ""
	m.pendingLabel = ""
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	if !m.loading || !m.profiles.Animations() {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) execute(id, label string, handler command.Handler) tea.Cmd {
	spin := m.startLoading(id, label)
	return tea.Batch(m.bus.Execute(command.Request{ID: id, Label: label, Handler: handler}), spin)
}

func (m *Model) serverActionCmd(id, label string, action func(context.Context) (string, error)) tea.Cmd {
	if m.loading {
		return nil
	}
	return m.execute(id, label, func(ctx context.Context) tea.Msg {
		text, err := action(ctx)
		info := strings.TrimSpace(text)
		if info == "" {
			info = label + " requested"
		}
		return actionResult{ID: id, Info: info, Err: err, Refresh: []backend.Kind{backend.KindStatus}}
	})
}

func (m *Model) restoreBackupCmd(index int) tea.Cmd {
	return m.execute("backup:restore", fmt.Sprintf("Restore backup #%d", index), func(ctx context.Context) tea.Msg {
		text, err := m.client.RestoreBackup(ctx, index)
		info := strings.TrimSpace(text)
		if info == "" {
			info = fmt.Sprintf("Backup %d restored successfully", index)
		}
		return actionResult{ID: "backup:restore", Info: info, Err: err, Refresh: []backend.Kind{backend.KindBackups, backend.KindStatus}}
	})
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(actionResult)
	if !ok {
		return nil
	}
	return m.withPrompt(func() promptResult {
		if result.Err != nil {
			events.Action.Error(result.Err)
			if api.IsAuthRequired(result.Err) {
				return promptResult{Cmd: m.requireLogin(), Err: result.Err}
			}
			return promptResult{Err: errors.New(actionErrorText(result.Err))}
		}
		events.Action.Success(result.Info)
		if m.backend != nil {
			for _, kind := range result.Refresh {
				m.backend.Refresh(kind)
			}
		}
		return promptResult{Info: result.Info}
	})
}

// actionErrorText prefers what the server said over transport detail.
func actionErrorText(err error) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

func (m *Model) checkAuthCmd() tea.Cmd {
	return m.bus.Execute(command.Request{ID: "auth:check", Label: "Check session", Handler: func(ctx context.Context) tea.Msg {
		ok := m.client.SyncAuthState(ctx)
		return authCheckedMsg{ok: ok, state: m.client.Auth().Get()}
	}})
}

func (m *Model) handleAuthCheckedMsg(msg tea.Msg) tea.Cmd {
	checked, ok := msg.(authCheckedMsg)
	if !ok {
		return nil
	}
	if checked.ok {
		return nil
	}
	if !checked.state.IsAuthenticated && checked.state.AuthError == "Authentication required" {
		return m.requireLogin()
	}
	if checked.state.AuthError != "" {
		m.errMsg = checked.state.AuthError
	}
	return nil
}

func (m *Model) loginCmd(username, password string) tea.Cmd {
	return m.execute("auth:login", "Sign in", func(ctx context.Context) tea.Msg {
		if err := m.client.Login(ctx, api.Credentials{Username: username, Password: password}); err != nil {
			return loginResultMsg{err: err}
		}
		user, err := m.client.WhoAmI(ctx)
		if err != nil {
			logging.Error(err)
		}
		return loginResultMsg{user: user}
	})
}

func (m *Model) handleLoginResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(loginResultMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	if result.err != nil {
		events.Action.Error(result.err)
		if m.loginForm != nil {
			m.loginForm.err = result.err.Error()
		}
		return nil
	}
	cmd := m.setView(ViewHome)
	m.refreshWatcher()
	if result.user.Username != "" {
		m.setInfo(fmt.Sprintf("Signed in as %s (%s)", result.user.Username, result.user.AccessLevel))
	} else {
		m.setInfo("Signed in")
	}
	return tea.Batch(cmd, m.sscmEnabledCmd())
}

func (m *Model) logout() tea.Cmd {
	m.client.Logout()
	events.Action.Success("logout")
	return m.setView(ViewLogin)
}

func (m *Model) switchBackendCmd(id string) tea.Cmd {
	if m.loading {
		return nil
	}
	return m.execute("backend:switch", "Switch to "+id, func(ctx context.Context) tea.Msg {
		ok := m.client.SetActiveBackend(ctx, id)
		return backendSwitchedMsg{id: id, ok: ok, state: m.client.Auth().Get()}
	})
}

func (m *Model) handleBackendSwitchedMsg(msg tea.Msg) tea.Cmd {
	switched, ok := msg.(backendSwitchedMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	m.refreshBackendList()
	if m.profiles.ActiveID() != switched.id {
		m.errMsg = fmt.Sprintf("Unknown backend %s", switched.id)
		return nil
	}
	m.catalog = nil
	m.lists[TabSettings].UpdateItems(nil)
	m.refreshWatcher()
	if !switched.ok && switched.state.AuthError == "Authentication required" {
		return m.setView(ViewLogin)
	}
	if !switched.ok {
		m.errMsg = switched.state.AuthError
		return nil
	}
	cmd := m.setView(ViewHome)
	m.setInfo("Switched to " + m.backendSummary())
	return tea.Batch(cmd, m.sscmEnabledCmd())
}

func (m *Model) removeSelectedBackend() tea.Cmd {
	item, ok := m.backendList.Current()
	if !ok {
		return nil
	}
	p, ok := item.Data.(profile.Profile)
	if !ok {
		return nil
	}
	if err := m.profiles.Remove(p.ID); err != nil {
		m.errMsg = fmt.Sprintf("%s: %v", p.ID, err)
		return nil
	}
	m.refreshBackendList()
	m.setInfo("Removed " + p.ID)
	return nil
}

func (m *Model) loadCatalogCmd() tea.Cmd {
	return m.bus.Execute(command.Request{ID: "settings:load", Label: "Load settings", Handler: func(ctx context.Context) tea.Msg {
		catalog, err := settings.Catalog(ctx, m.client)
		return catalogLoadedMsg{catalog: catalog, err: err}
	}})
}

func (m *Model) handleCatalogLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(catalogLoadedMsg)
	if !ok {
		return nil
	}
	if loaded.err != nil {
		logging.Error(loaded.err)
		if api.IsAuthRequired(loaded.err) {
			return m.requireLogin()
		}
		m.errMsg = loaded.err.Error()
		return nil
	}
	m.catalog = loaded.catalog
	if m.catalog == nil {
		m.catalog = []settings.Setting{}
	}
	m.lists[TabSettings].UpdateItems(settingItems(m.catalog))
	m.syncViewport(m.lists[TabSettings])
	return nil
}

func (m *Model) saveSettingCmd(setting settings.Setting, raw string) tea.Cmd {
	return m.execute("settings:save", "Save "+setting.Name, func(ctx context.Context) tea.Msg {
		return settingSavedMsg{field: setting.Name, result: m.submitter.SubmitRaw(ctx, setting, raw)}
	})
}

func (m *Model) handleSettingSavedMsg(msg tea.Msg) tea.Cmd {
	saved, ok := msg.(settingSavedMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	res := saved.result
	if !res.OK() {
		if api.IsAuthRequired(res.Err) {
			return m.requireLogin()
		}
		m.errMsg = res.Message
		return nil
	}
	return tea.Batch(m.setNotice(res.Message, res.Duration), m.loadCatalogCmd())
}

func (m *Model) wizardSubmitCmd(step, primary, secondary string) tea.Cmd {
	return m.execute("setup:"+step, "Setup "+step, func(ctx context.Context) tea.Msg {
		return wizardResultMsg{step: step, result: m.wizard.Submit(ctx, step, primary, secondary)}
	})
}

func (m *Model) handleWizardResultMsg(msg tea.Msg) tea.Cmd {
	done, ok := msg.(wizardResultMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	res := done.result
	if !res.OK() {
		if m.setupForm != nil {
			m.setupForm.err = res.Message
		}
		return nil
	}
	var notice tea.Cmd
	if res.Message != "" {
		notice = m.setNotice(res.Message, res.Duration)
	}
	if res.NextStep == "" {
		return tea.Batch(notice, m.setView(ViewLogin))
	}
	step, found := m.wizard.Step(res.NextStep)
	if !found {
		m.errMsg = "Unknown setup step " + res.NextStep
		return notice
	}
	m.setupForm = newSetupForm(m.wizard, step)
	return notice
}

func (m *Model) sscmEnabledCmd() tea.Cmd {
	return m.bus.Execute(command.Request{ID: "sscm:enabled", Label: "Check console commands", Handler: func(ctx context.Context) tea.Msg {
		return sscmEnabledMsg{enabled: m.client.SSCMEnabled(ctx)}
	}})
}

func (m *Model) handleSSCMEnabledMsg(msg tea.Msg) tea.Cmd {
	enabled, ok := msg.(sscmEnabledMsg)
	if !ok {
		return nil
	}
	m.sscmEnabled = enabled.enabled
	return nil
}

func (m *Model) runCommandCmd(command string) tea.Cmd {
	return m.execute("sscm:run", command, func(ctx context.Context) tea.Msg {
		line, err := m.client.RunSSCM(ctx, command)
		return sscmResultMsg{line: line, err: err}
	})
}

// handleSSCMResultMsg echoes the outcome into the console panel.
func (m *Model) handleSSCMResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(sscmResultMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	line := result.line
	if result.err != nil {
		events.Action.Error(result.err)
		line = result.err.Error()
	}
	m.panels[TabConsole].Append(console.Notice(line))
	return nil
}

// copyPanelCmd copies the visible tab's contents to the system clipboard.
func (m *Model) copyPanelCmd() tea.Cmd {
	var text string
	var rows int
	if p := m.panels[m.tab]; p != nil {
		text = p.Text()
		rows = len(p.Rows())
	} else if l := m.currentList(); l != nil {
		labels := make([]string, len(l.Items))
		for i, item := range l.Items {
			labels[i] = item.Label
		}
		text = strings.Join(labels, "\n")
		rows = len(labels)
	}
	return m.bus.Execute(command.Request{ID: "clipboard:copy", Label: m.tab.String(), Handler: func(context.Context) tea.Msg {
		return clipboardResultMsg{rows: rows, err: clipboard.WriteAll(text)}
	}})
}

func (m *Model) handleClipboardResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(clipboardResultMsg)
	if !ok {
		return nil
	}
	if result.err != nil {
		logging.Error(result.err)
		m.errMsg = "Clipboard unavailable: " + result.err.Error()
		return nil
	}
	m.setInfo(fmt.Sprintf("Copied %d rows", result.rows))
	return nil
}

// setNotice shows message for d and schedules a redraw when it lapses.
func (m *Model) setNotice(message string, d time.Duration) tea.Cmd {
	m.infoMsg = message
	m.infoExpire = m.now().Add(d)
	return m.tick(d, func(time.Time) tea.Msg { return infoExpiredMsg{} })
}

func (m *Model) handleInfoExpiredMsg(tea.Msg) tea.Cmd {
	m.currentInfo()
	return nil
}
