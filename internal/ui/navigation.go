package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/settings"
	"github.com/steamserverui/ssui-console/internal/theme"
	uistate "github.com/steamserverui/ssui-console/internal/ui/state"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+t":
		m.nextTheme()
		return nil
	}
	switch m.view {
	case ViewHome:
		return m.handleHomeKey(keyMsg)
	case ViewBackends:
		return m.handleBackendsKey(keyMsg)
	}
	return nil
}

func (m *Model) handleHomeKey(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "tab":
		return m.showTab((m.tab + 1) % tabCount)
	case "shift+tab":
		return m.showTab((m.tab + tabCount - 1) % tabCount)
	case "f1", "f2", "f3", "f4", "f5", "f6":
		n, _ := strconv.Atoi(key[1:])
		return m.showTab(Tab(n - 1))
	case "ctrl+b":
		return m.setView(ViewBackends)
	case "ctrl+l":
		return m.logout()
	case "ctrl+r":
		return m.refreshCurrentTab()
	case "ctrl+y":
		return m.copyPanelCmd()
	}
	if p := m.panels[m.tab]; p != nil {
		return m.handlePanelKey(p, msg)
	}
	return m.handleListKey(msg)
}

// handlePanelKey serves the stream tabs, where letters are shortcuts rather
// than filter input.
func (m *Model) handlePanelKey(p *LiveStreamPanel, msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if p.Scroll(key) {
		return nil
	}
	switch key {
	case "1", "2", "3", "4", "5", "6":
		n, _ := strconv.Atoi(key)
		return m.showTab(Tab(n - 1))
	case "q":
		return tea.Quit
	case "s":
		return m.serverActionCmd("server:start", "Start server", m.client.StartServer)
	case "x":
		return m.serverActionCmd("server:stop", "Stop server", m.client.StopServer)
	case "u":
		return m.serverActionCmd("steamcmd:run", "Run SteamCMD", m.client.RunSteamCMD)
	case "y":
		return m.copyPanelCmd()
	case ":", "c":
		if m.tab == TabConsole {
			return m.startCommandPrompt()
		}
	}
	return nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	current := m.currentList()
	if current == nil {
		return nil
	}
	if handled, cmd := m.handleTextInput(msg); handled {
		return cmd
	}
	switch msg.String() {
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		return m.handleEnterKey()
	case "up":
		m.moveCursor(func(l *list) bool { return l.Step(-1, true) })
	case "down":
		m.moveCursor(func(l *list) bool { return l.Step(1, true) })
	case "pgup":
		m.moveCursor(func(l *list) bool { return l.Page(-1, m.maxVisibleItems()) })
	case "pgdown":
		m.moveCursor(func(l *list) bool { return l.Page(1, m.maxVisibleItems()) })
	case "home":
		m.moveCursor(func(l *list) bool { return l.Jump(0) })
	case "end":
		m.moveCursor(func(l *list) bool { return l.Jump(len(l.Items) - 1) })
	}
	return nil
}

func (m *Model) handleBackendsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+n":
		m.startBackendForm()
		return nil
	case "ctrl+d":
		return m.removeSelectedBackend()
	}
	return m.handleListKey(msg)
}

// handleEscapeKey clears an active filter first; with no filter it leaves
// the backends view.
func (m *Model) handleEscapeKey() tea.Cmd {
	current := m.currentList()
	if current != nil && current.Filter != "" {
		m.editFilter(current, uistate.EditClear, "")
		return nil
	}
	m.errMsg = ""
	if m.view == ViewBackends {
		return m.setView(ViewHome)
	}
	return nil
}

func (m *Model) handleEnterKey() tea.Cmd {
	if m.loading {
		return nil
	}
	current := m.currentList()
	if current == nil {
		return nil
	}
	item, ok := current.Current()
	if !ok {
		return nil
	}
	events.UI.ListEnter(current.ID, item.ID, item.Label, current.Filter)
	switch data := item.Data.(type) {
	case api.Backup:
		m.startConfirm(
			"Restore backup #"+strconv.Itoa(data.Index)+" ("+data.FileName()+")?",
			func() tea.Cmd { return m.restoreBackupCmd(data.Index) },
		)
	case settings.Setting:
		m.startSettingForm(data)
	case profile.Profile:
		return m.switchBackendCmd(data.ID)
	case api.Player:
		m.setInfo(data.Username + " " + data.SteamID)
	}
	return nil
}

func (m *Model) currentList() *list {
	switch m.view {
	case ViewBackends:
		return m.backendList
	case ViewHome:
		return m.lists[m.tab]
	}
	return nil
}

// moveCursor applies a cursor movement to the visible list and keeps the
// cursor on screen.
func (m *Model) moveCursor(move func(*list) bool) {
	current := m.currentList()
	if current == nil {
		return
	}
	if move(current) {
		events.UI.ListCursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

func (m *Model) syncViewport(l *list) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleItems())
}

// refreshCurrentTab re-fetches whatever the visible tab shows.
func (m *Model) refreshCurrentTab() tea.Cmd {
	switch m.tab {
	case TabSettings:
		return m.loadCatalogCmd()
	case TabBackups:
		if m.backend != nil {
			m.backend.Refresh(backend.KindBackups)
		}
	case TabPlayers:
		if m.backend != nil {
			m.backend.Refresh(backend.KindPlayers)
		}
	default:
		if p := m.panels[m.tab]; p != nil {
			p.Connect()
		}
	}
	return nil
}

// nextTheme rotates to the next built-in theme and persists the choice.
func (m *Model) nextTheme() {
	name := theme.Next(styles.Name)
	styles = theme.Named(name)
	m.profiles.SetTheme(name)
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	for _, p := range m.panels {
		if p != nil {
			p.Restyle()
		}
	}
	events.UI.ThemeChange(name)
	m.setInfo("Theme: " + name)
}
