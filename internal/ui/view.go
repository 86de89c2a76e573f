package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/steamserverui/ssui-console/internal/state"
)

const (
	infoDuration      = 5 * time.Second
	defaultBodyHeight = 20
	appTitle          = "SteamServerUI"
)

var (
	detailBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	detailScrollStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.header()
	switch m.view {
	case ViewLogin:
		if m.loginForm != nil {
			return m.viewForm(m.loginForm.fieldForm, header, "Backend: "+m.backendSummary())
		}
	case ViewSetup:
		if m.setupForm != nil {
			return m.viewForm(m.setupForm.fieldForm, header, m.setupForm.step.Message)
		}
	case ViewBackends:
		if m.mode == ModeBackendForm && m.backendForm != nil {
			return m.viewForm(m.backendForm.fieldForm, header, "")
		}
		return m.viewList(header, "↑/↓ move  enter switch  ctrl+n add  ctrl+d remove  esc back")
	}
	if m.mode == ModeSettingForm && m.settingForm != nil {
		return m.viewForm(m.settingForm.fieldForm, header, m.settingForm.setting.Description)
	}
	if m.panels[m.tab] != nil {
		return m.viewPanel()
	}
	return m.viewList(header, "↑/↓ move  enter select  ctrl+r refresh  tab next  ctrl+b backends  ctrl+c quit")
}

func (m *Model) header() string {
	return appTitle + " · " + m.backendSummary()
}

// chromeRows counts the rows around the body: tab bar, status bar, message
// line and prompt line, plus the optional footer.
func (m *Model) chromeRows() int {
	rows := 4
	if m.showFooter {
		rows++
	}
	return rows
}

func (m *Model) bodyHeight() int {
	if m.height <= 0 {
		return -1
	}
	h := m.height - m.chromeRows()
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) resizePanels() {
	h := m.bodyHeight()
	if h < 0 {
		h = defaultBodyHeight
	}
	for _, p := range m.panels {
		if p != nil {
			p.Resize(m.width, h)
		}
	}
}

func (m *Model) viewPanel() string {
	p := m.panels[m.tab]
	lines := []styledLine{{text: m.tabBar(), raw: true}}
	for _, row := range strings.Split(p.View(), "\n") {
		lines = append(lines, styledLine{text: row, raw: true})
	}
	if h := m.bodyHeight(); h > 0 {
		lines = limitHeight(lines, h+1, m.width)
	}
	lines = applyWidth(lines, m.width)

	bottom := m.bottomLines("")
	return renderLines(lines) + "\n" + renderLines(bottom)
}

// viewList renders the current list, with the detail panel on the right when
// the terminal is wide enough.
func (m *Model) viewList(header, help string) string {
	top := styledLine{text: m.tabBar(), raw: true}
	if m.view == ViewBackends {
		top = styledLine{text: header, style: styles.Header}
	}
	listW := m.width
	detailW := 0
	if m.hasSideDetail() {
		detailW = m.detailPanelWidth()
		listW = m.width - detailW
	}

	content := m.listLines(listW)
	bodyH := m.bodyHeight()
	if bodyH > 0 {
		if len(content) > bodyH {
			content = content[:bodyH]
		}
		if detailW > 0 {
			for len(content) < bodyH {
				content = append(content, styledLine{})
			}
		}
	}
	content = applyWidth(content, listW)
	body := renderLines(content)

	if detailW > 0 {
		rows := strings.Split(body, "\n")
		for i, row := range rows {
			w := lipgloss.Width(row)
			if w > listW {
				rows[i] = truncate.StringWithTail(row, uint(listW-1), "…")
			} else if w < listW {
				rows[i] = row + strings.Repeat(" ", listW-w)
			}
		}
		panelH := bodyH
		if panelH < 3 {
			panelH = 3
		}
		detail := m.renderDetailPanel(m.detailTitle(), m.detailLines(detailW-4), detailW, panelH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(rows, "\n"), detail)
	}

	head := renderLines(applyWidth([]styledLine{top}, m.width))
	bottom := m.bottomLines(help)
	return head + "\n" + body + "\n" + renderLines(bottom)
}

func (m *Model) listLines(width int) []styledLine {
	current := m.currentList()
	if current == nil {
		return nil
	}
	m.syncViewport(current)
	if len(current.Items) == 0 {
		msg := "(no entries)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		} else if current == m.lists[TabSettings] && m.catalog == nil {
			msg = "Loading…"
		}
		return []styledLine{{text: msg, style: styles.Info}}
	}
	start := 0
	displayItems := current.Items
	if maxItems := m.maxVisibleItems(); maxItems > 0 && len(displayItems) > maxItems {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(displayItems) {
			start = len(displayItems) - maxItems
			if start < 0 {
				start = 0
			}
			current.ViewportOffset = start
		}
		displayItems = displayItems[start : start+maxItems]
	}
	lines := make([]styledLine, 0, len(displayItems))
	for i, item := range displayItems {
		lines = append(lines, m.buildItemLine(item.Label, start+i, current, width))
	}
	return lines
}

// bottomLines is the status bar, the message line and the prompt line.
func (m *Model) bottomLines(help string) []styledLine {
	lines := []styledLine{{text: m.statusBar(), raw: true}}

	var message styledLine
	switch {
	case m.errMsg != "":
		message = styledLine{text: "Error: " + m.errMsg, style: styles.Error}
	default:
		if info := m.currentInfo(); info != "" {
			message = styledLine{text: info, style: styles.Info}
		}
	}
	lines = append(lines, message)

	switch {
	case m.mode == ModeConfirm && m.confirm != nil:
		lines = append(lines, styledLine{text: m.confirm.question + " [y/n]", style: styles.Header})
	case m.mode == ModeCommandPrompt && m.prompt != nil:
		lines = append(lines, styledLine{text: m.prompt.InputView(), raw: true})
	case m.currentList() != nil:
		promptText := m.filterPrompt()
		lines = append(lines, styledLine{text: promptText, raw: true})
	default:
		lines = append(lines, styledLine{text: m.panelHelp(), style: styles.Footer})
	}
	if m.showFooter {
		if help == "" {
			help = "tab/shift+tab switch  ctrl+y copy  ctrl+t theme  ctrl+l logout  ctrl+c quit"
		}
		lines = append(lines, styledLine{text: help, style: styles.Footer})
	}
	return applyWidth(lines, m.width)
}

func (m *Model) panelHelp() string {
	help := "s start  x stop  u steamcmd  y copy  ↑/↓ scroll"
	if m.tab == TabConsole && m.sscmEnabled {
		help += "  : command"
	}
	return help
}

func (m *Model) tabBar() string {
	segments := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t.String())
		style := styles.Tab
		switch {
		case t == m.tab:
			style = styles.ActiveTab
		case m.tabNotified(t):
			style = styles.NotifiedTab
			label += " •"
		}
		segments = append(segments, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (m *Model) statusBar() string {
	indicator := m.status.Indicator()
	style := styles.Info
	switch indicator {
	case state.IndicatorOnline:
		style = styles.StatusOnline
	case state.IndicatorOffline:
		style = styles.StatusOffline
	case state.IndicatorError:
		style = styles.StatusError
	}
	parts := []string{style.Render("● " + indicator.String()), styles.Header.Render(m.header())}

	auth := m.client.Auth().Get()
	switch {
	case auth.IsAuthenticating:
		parts = append(parts, "signing in")
	case auth.IsAuthenticated:
		parts = append(parts, "signed in")
	case auth.AuthError != "":
		parts = append(parts, styles.Error.Render(auth.AuthError))
	}
	if p := m.panels[m.tab]; p != nil && p.Started() {
		parts = append(parts, "stream "+p.State().String())
	}
	if m.loading {
		label := m.pendingLabel
		if m.profiles.Animations() {
			label = m.spinner.View() + " " + label
		} else {
			label = "… " + label
		}
		parts = append(parts, styles.Loading.Render(label))
	}
	return strings.Join(parts, "  ")
}

// buildItemLine constructs a single styledLine for a list item.
// width is the target column width; when > 0 the text is padded so that
// the selected item's background spans the full container.
func (m *Model) buildItemLine(label string, idx int, current *list, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if idx == current.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + label
	if width > 0 {
		if pad := width - len([]rune(fullText)); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

// renderDetailPanel builds the bordered detail box as a string with exactly
// height rows and totalWidth columns.
func (m *Model) renderDetailPanel(title string, content []string, totalWidth, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)

	innerW := totalWidth - 2
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	scrollSeg := ""
	if len(content) > innerH {
		scrollSeg = fmt.Sprintf(" %d/%d ", innerH, len(content))
		content = content[:innerH]
	}
	titleSeg := " " + title + " "
	dashes := totalWidth - 4 - len([]rune(titleSeg)) - len([]rune(scrollSeg))
	if dashes < 0 {
		scrollSeg = ""
		dashes = totalWidth - 4 - len([]rune(titleSeg))
	}
	if dashes < 0 {
		titleSeg = " … "
		dashes = totalWidth - 4 - len([]rune(titleSeg))
	}
	if dashes < 0 {
		dashes = 0
	}
	topLine := detailBorderStyle.Render(tlc+hz) +
		styles.Header.Render(titleSeg) +
		detailBorderStyle.Render(strings.Repeat(hz, dashes)) +
		detailScrollStyle.Render(scrollSeg) +
		detailBorderStyle.Render(hz+trc)
	bottomLine := detailBorderStyle.Render(blc + strings.Repeat(hz, innerW) + brc)

	rows := make([]string, 0, height)
	rows = append(rows, topLine)
	for i := 0; i < innerH; i++ {
		var line string
		if i < len(content) {
			line = content[i]
		}
		w := lipgloss.Width(line)
		if w > innerW {
			line = truncate.StringWithTail(line, uint(innerW-1), "…")
			w = lipgloss.Width(line)
		}
		if w < innerW {
			line += strings.Repeat(" ", innerW-w)
		}
		rows = append(rows, detailBorderStyle.Render(vt)+styles.Item.Render(line)+detailBorderStyle.Render(vt))
	}
	rows = append(rows, bottomLine)
	return strings.Join(rows, "\n")
}

// handleMouseMsg scrolls the visible stream panel, or moves the list cursor
// on the wheel.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok || m.mode != ModeNormal {
		return nil
	}
	if m.view == ViewHome {
		if p := m.panels[m.tab]; p != nil {
			return p.Update(ev)
		}
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(func(l *list) bool { return l.Step(-1, false) })
	case tea.MouseButtonWheelDown:
		m.moveCursor(func(l *list) bool { return l.Step(1, false) })
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.resizePanels()
	if current := m.currentList(); current != nil {
		m.syncViewport(current)
	}
	return nil
}

func (m *Model) maxVisibleItems() int {
	return m.bodyHeight()
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = m.now().Add(infoDuration)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && !m.now().Before(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
