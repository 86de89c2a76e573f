package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/stream"
)

type streamEventMsg struct {
	event stream.Event
}

type streamDoneMsg struct{}

type tabNotifyExpiredMsg struct {
	tab Tab
}

func waitForStreamEvent(ch <-chan stream.Event, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-ch:
			return streamEventMsg{event: evt}
		case <-done:
			return streamDoneMsg{}
		}
	}
}

// startPanel subscribes the panel behind tab the first time it is needed.
func (m *Model) startPanel(t Tab) {
	p := m.panels[t]
	if p == nil || p.Started() {
		return
	}
	for _, endpoint := range p.Endpoints() {
		m.streamPanel[endpoint] = p
	}
	p.Start(m.dialer, m.profiles, m.clock, m.gate.Active, m.deliverStreamEvent)
}

// deliverStreamEvent runs on stream goroutines and hands events to the UI
// loop. It gives up once the model has been closed.
func (m *Model) deliverStreamEvent(evt stream.Event) {
	select {
	case m.streamEvents <- evt:
	case <-m.done:
	}
}

func (m *Model) handleStreamEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(streamEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyStreamEvent(eventMsg.event)
	if m.listening {
		waitCmd := waitForStreamEvent(m.streamEvents, m.done)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleStreamDoneMsg(tea.Msg) tea.Cmd {
	m.listening = false
	return nil
}

func (m *Model) applyStreamEvent(evt stream.Event) tea.Cmd {
	p, ok := m.streamPanel[evt.Stream]
	if !ok {
		return nil
	}
	if !p.Handle(evt, m.now()) {
		return nil
	}
	t := m.tabForPanel(p)
	if m.view == ViewHome && t == m.tab {
		return nil
	}
	return m.notifyTab(t)
}

func (m *Model) tabForPanel(p *LiveStreamPanel) Tab {
	for t, candidate := range m.panels {
		if candidate == p {
			return Tab(t)
		}
	}
	return -1
}

// notifyTab marks t for tabNotifyDuration. Arrivals while the mark is showing
// do not extend it.
func (m *Model) notifyTab(t Tab) tea.Cmd {
	if t < 0 || m.tabNotified(t) {
		return nil
	}
	m.notified[t] = m.now().Add(tabNotifyDuration)
	events.UI.TabNotify(t.String())
	return m.tick(tabNotifyDuration, func(time.Time) tea.Msg {
		return tabNotifyExpiredMsg{tab: t}
	})
}

func (m *Model) tabNotified(t Tab) bool {
	expiry, ok := m.notified[t]
	if !ok {
		return false
	}
	if !m.now().Before(expiry) {
		delete(m.notified, t)
		return false
	}
	return true
}

func (m *Model) handleTabNotifyExpiredMsg(msg tea.Msg) tea.Cmd {
	expired, ok := msg.(tabNotifyExpiredMsg)
	if !ok {
		return nil
	}
	m.tabNotified(expired.tab)
	return nil
}
