package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptResult struct {
	Cmd  tea.Cmd
	Info string
	Err  error
}

// withPrompt centralises the common result flow: reset the pending state and
// run the provided action. The action returns a promptResult to control
// follow-up behaviour (command to run, informational message, or error).
func (m *Model) withPrompt(action func() promptResult) tea.Cmd {
	m.loading = false
	m.pendingID = ""
	m.pendingLabel = ""
	m.forceClearInfo()
	m.errMsg = ""
	if action == nil {
		return nil
	}
	result := action()
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		return result.Cmd
	}
	if result.Info != "" {
		m.setInfo(result.Info)
	}
	return result.Cmd
}

// commandPrompt reads one console command for the server command bridge.
type commandPrompt struct {
	input textinput.Model
}

func newCommandPrompt() *commandPrompt {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "say hello"
	ti.CharLimit = 256
	ti.Focus()
	return &commandPrompt{input: ti}
}

func (p *commandPrompt) Value() string     { return strings.TrimSpace(p.input.Value()) }
func (p *commandPrompt) InputView() string { return p.input.View() }

func (m *Model) startCommandPrompt() tea.Cmd {
	if !m.sscmEnabled {
		m.setInfo("Console commands are not enabled on this backend")
		return nil
	}
	m.prompt = newCommandPrompt()
	m.mode = ModeCommandPrompt
	return textinput.Blink
}

func (m *Model) handleCommandPrompt(msg tea.Msg) (bool, tea.Cmd) {
	if m.prompt == nil {
		return false, nil
	}
	key := msg.(tea.KeyMsg)
	switch key.Type {
	case tea.KeyEsc:
		m.prompt = nil
		m.mode = ModeNormal
		return true, nil
	case tea.KeyEnter:
		command := m.prompt.Value()
		m.prompt = nil
		m.mode = ModeNormal
		if command == "" {
			return true, nil
		}
		return true, m.runCommandCmd(command)
	}
	updated, cmd := m.prompt.input.Update(msg)
	m.prompt.input = updated
	return true, cmd
}

// confirmPrompt asks a yes/no question before running onYes.
type confirmPrompt struct {
	question string
	onYes    func() tea.Cmd
}

func (m *Model) startConfirm(question string, onYes func() tea.Cmd) {
	m.confirm = &confirmPrompt{question: question, onYes: onYes}
	m.mode = ModeConfirm
}

func (m *Model) handleConfirm(msg tea.Msg) (bool, tea.Cmd) {
	if m.confirm == nil {
		return false, nil
	}
	key := msg.(tea.KeyMsg)
	switch key.String() {
	case "y", "Y", "enter":
		onYes := m.confirm.onYes
		m.confirm = nil
		m.mode = ModeNormal
		if onYes == nil {
			return true, nil
		}
		return true, onYes()
	case "n", "N", "esc":
		m.confirm = nil
		m.mode = ModeNormal
		return true, nil
	}
	return true, nil
}
