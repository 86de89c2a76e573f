package ui

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/format/table"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/settings"
	uistate "github.com/steamserverui/ssui-console/internal/ui/state"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil && m.listening {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	res := m.dispatcher.Handle(evt)
	if res.AuthRequired {
		return m.requireLogin()
	}
	if res.BackupsUpdated {
		m.lists[TabBackups].UpdateItems(backupItems(m.backups.Entries(), m.now))
		m.syncViewport(m.lists[TabBackups])
	}
	if res.PlayersUpdated {
		m.lists[TabPlayers].UpdateItems(playerItems(m.players.Entries()))
		m.syncViewport(m.lists[TabPlayers])
	}
	return nil
}

// requireLogin moves to the login view unless a login is already showing.
func (m *Model) requireLogin() tea.Cmd {
	if m.view == ViewLogin || m.view == ViewSetup {
		return nil
	}
	return m.setView(ViewLogin)
}

// refreshWatcher asks for fresh data of every kind, e.g. after a login or a
// backend switch.
func (m *Model) refreshWatcher() {
	if m.backend == nil {
		return
	}
	for _, kind := range []backend.Kind{backend.KindStatus, backend.KindPlayers, backend.KindBackups} {
		m.backend.Refresh(kind)
	}
}

func backupItems(backups []api.Backup, now func() time.Time) []uistate.Item {
	rows := make([][]string, len(backups))
	for i, b := range backups {
		age := ""
		if !b.ModTime.IsZero() {
			age = humanize.RelTime(b.ModTime, now(), "ago", "from now")
		}
		rows[i] = []string{"#" + strconv.Itoa(b.Index), b.Type(), b.FileName(), age}
	}
	lines := table.Format(rows, []table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignRight})
	items := make([]uistate.Item, len(backups))
	for i, b := range backups {
		items[i] = uistate.Item{
			ID:       strconv.Itoa(b.Index),
			Label:    lines[i],
			Keywords: []string{b.Type(), b.BinFile, b.XMLFile, b.MetaFile},
			Data:     b,
		}
	}
	return items
}

func playerItems(players []api.Player) []uistate.Item {
	rows := make([][]string, len(players))
	for i, p := range players {
		rows[i] = []string{p.Username, p.SteamID}
	}
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft})
	items := make([]uistate.Item, len(players))
	for i, p := range players {
		items[i] = uistate.Item{ID: p.ID, Label: lines[i], Keywords: []string{p.SteamID}, Data: p}
	}
	return items
}

func settingItems(catalog []settings.Setting) []uistate.Item {
	rows := make([][]string, 0, len(catalog))
	ordered := make([]settings.Setting, 0, len(catalog))
	for _, group := range settings.Groups(catalog) {
		for _, s := range settings.InGroup(catalog, group) {
			rows = append(rows, []string{s.Group, s.Name, settings.Format(s)})
			ordered = append(ordered, s)
		}
	}
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft})
	items := make([]uistate.Item, len(ordered))
	for i, s := range ordered {
		items[i] = uistate.Item{
			ID:       s.Name,
			Label:    lines[i],
			Keywords: []string{s.Group, string(s.Type), s.Description},
			Data:     s,
		}
	}
	return items
}

func profileItems(profiles []profile.Profile, active string) []uistate.Item {
	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		mark := " "
		if p.ID == active {
			mark = "*"
		}
		auth := ""
		if p.AuthToken != nil {
			auth = "token"
		}
		rows[i] = []string{mark, p.ID, p.BaseURL, auth}
	}
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignLeft})
	items := make([]uistate.Item, len(profiles))
	for i, p := range profiles {
		items[i] = uistate.Item{ID: p.ID, Label: lines[i], Keywords: []string{p.BaseURL}, Data: p}
	}
	return items
}

func (m *Model) refreshBackendList() {
	m.backendList.UpdateItems(profileItems(m.profiles.Profiles(), m.profiles.ActiveID()))
	m.syncViewport(m.backendList)
}

// backendSummary names the active backend for the status bar.
func (m *Model) backendSummary() string {
	active := m.profiles.Active()
	url := active.BaseURL
	if url == profile.DefaultURL {
		target, err := m.client.ResolveFor(active, "")
		if err != nil {
			return active.ID
		}
		url = target.URL
	}
	return fmt.Sprintf("%s (%s)", active.ID, url)
}
