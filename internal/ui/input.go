package ui

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/steamserverui/ssui-console/internal/logging/events"
	uistate "github.com/steamserverui/ssui-console/internal/ui/state"
)

const filterPlaceholder = "(type to search)"

// filterKeys maps editing keys on a list tab to filter edits. Printable
// runes are handled separately as EditInsert.
var filterKeys = map[string]uistate.FilterEdit{
	"backspace": uistate.EditBackspace,
	"ctrl+h":    uistate.EditBackspace,
	"ctrl+w":    uistate.EditDeleteWord,
	"ctrl+u":    uistate.EditClear,
	"ctrl+a":    uistate.EditHome,
	"ctrl+e":    uistate.EditEnd,
	"left":      uistate.EditLeft,
	"right":     uistate.EditRight,
	"alt+b":     uistate.EditWordLeft,
	"alt+f":     uistate.EditWordRight,
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

// handleTextInput feeds a key to the filter of the visible list. Keys it
// does not consume fall through to list navigation.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.currentList()
	if m.loading || current == nil {
		return false, nil
	}
	if edit, ok := filterKeys[msg.String()]; ok {
		return m.editFilter(current, edit, ""), nil
	}
	switch msg.Type {
	case tea.KeySpace:
		return m.editFilter(current, uistate.EditInsert, " "), nil
	case tea.KeyRunes:
		if msg.Alt || !printable(msg.Runes) {
			return false, nil
		}
		return m.editFilter(current, uistate.EditInsert, string(msg.Runes)), nil
	}
	return false, nil
}

func printable(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// editFilter applies one edit to l and reports whether anything changed.
// Text edits dismiss stale notices and re-scroll the list.
func (m *Model) editFilter(l *list, edit uistate.FilterEdit, text string) bool {
	before := l.FilterCursorPos()
	if !l.EditFilter(edit, text) {
		return false
	}
	if before != l.FilterCursorPos() {
		m.filterCursorDirty = true
	}
	events.Filter.Edit(l.ID, edit.String(), l.Filter, l.FilterCursorPos())
	if edit.ChangesText() {
		m.forceClearInfo()
		m.errMsg = ""
		m.syncViewport(l)
	}
	return true
}

// filterPrompt renders the filter line with the cursor drawn over the rune
// it sits on. An empty filter shows the placeholder instead.
func (m *Model) filterPrompt() string {
	prompt := "» "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	current := m.currentList()
	if current == nil {
		return prompt
	}

	textStyle := styles.Filter
	runes := []rune(current.Filter)
	pos := current.FilterCursorPos()
	if len(runes) == 0 {
		textStyle = styles.FilterPlaceholder
		runes = []rune(filterPlaceholder)
		pos = 0
	}
	if textStyle != nil {
		m.filterCursor.TextStyle = textStyle.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}

	caret, after := " ", ""
	if pos < len(runes) {
		caret, after = string(runes[pos]), string(runes[pos+1:])
	}
	return prompt + renderWith(textStyle, string(runes[:pos])) + m.renderFilterCursor(caret) + renderWith(textStyle, after)
}

func renderWith(style *lipgloss.Style, s string) string {
	if style == nil || s == "" {
		return s
	}
	return style.Render(s)
}

func (m *Model) renderFilterCursor(char string) string {
	m.filterCursor.SetChar(char)
	base := m.filterCursor.TextStyle.Copy().Inline(true)
	switch {
	case m.filterCursor.Blink:
		return base.Render(char)
	case styles.Cursor != nil:
		return base.Inherit(styles.Cursor.Copy().Inline(true)).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
