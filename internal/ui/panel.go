package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/console"
	"github.com/steamserverui/ssui-console/internal/format/table"
	"github.com/steamserverui/ssui-console/internal/stream"
)

// followThreshold is how many lines from the end still count as "at the
// bottom" when deciding whether an append should keep the view pinned.
const followThreshold = 1

// PanelConfig parameterises a LiveStreamPanel. Console, detection events and
// the per-level logs are all instances of the same panel.
type PanelConfig struct {
	ID             string
	Endpoints      []string
	MaxMessages    int
	Classify       console.Classifier
	ReconnectDelay time.Duration
	Timestamps     bool
	// OpenNotice and ErrorNotice are appended when a stream opens or drops.
	OpenNotice  string
	ErrorNotice string
}

// LiveStreamPanel renders a bounded, auto-following buffer fed by one
// subscription per endpoint.
type LiveStreamPanel struct {
	cfg      PanelConfig
	buffer   *console.Buffer
	viewport viewport.Model
	subs     []*stream.Subscription
}

func newPanel(cfg PanelConfig) *LiveStreamPanel {
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = console.DefaultMaxRows
	}
	if cfg.Classify == nil {
		cfg.Classify = console.Plain
	}
	return &LiveStreamPanel{
		cfg:      cfg,
		buffer:   console.NewBuffer(cfg.MaxMessages),
		viewport: viewport.New(0, 0),
	}
}

// ID names the panel.
func (p *LiveStreamPanel) ID() string { return p.cfg.ID }

// Endpoints lists the streams the panel reads.
func (p *LiveStreamPanel) Endpoints() []string { return p.cfg.Endpoints }

// Started reports whether subscriptions have been created.
func (p *LiveStreamPanel) Started() bool { return len(p.subs) > 0 }

// Start creates one subscription per endpoint and connects them. deliver is
// called from stream goroutines.
func (p *LiveStreamPanel) Start(dialer stream.Dialer, profiles stream.Profiles, clock stream.Clock, owner func() bool, deliver func(stream.Event)) {
	if p.Started() {
		return
	}
	for _, endpoint := range p.cfg.Endpoints {
		sub := stream.New(dialer, profiles, stream.Config{
			Name:           endpoint,
			Endpoint:       endpoint,
			ReconnectDelay: p.cfg.ReconnectDelay,
			Owner:          owner,
			Handler:        deliver,
			Clock:          clock,
		})
		p.subs = append(p.subs, sub)
	}
	p.Connect()
}

// Connect dials every subscription that is currently disconnected.
func (p *LiveStreamPanel) Connect() {
	for _, sub := range p.subs {
		sub.Connect()
	}
}

// Close tears every subscription down.
func (p *LiveStreamPanel) Close() {
	for _, sub := range p.subs {
		sub.Close()
	}
}

// State summarises the subscriptions: open if any is open, connecting if any
// is connecting, otherwise disconnected.
func (p *LiveStreamPanel) State() stream.State {
	best := stream.Disconnected
	for _, sub := range p.subs {
		if s := sub.State(); s > best {
			best = s
		}
	}
	return best
}

// Handle applies a stream event and reports whether it added a row.
func (p *LiveStreamPanel) Handle(evt stream.Event, at time.Time) bool {
	switch evt.Kind {
	case stream.KindOpen:
		if p.cfg.OpenNotice != "" {
			p.Append(console.Notice(p.cfg.OpenNotice))
		}
		return false
	case stream.KindError:
		if p.cfg.ErrorNotice != "" {
			p.Append(console.Notice(p.cfg.ErrorNotice))
		}
		return false
	case stream.KindMessage:
		if !p.cfg.Timestamps {
			at = time.Time{}
		}
		p.Append(console.NewRow(evt.Data, p.cfg.Classify, at))
		return true
	}
	return false
}

// Append adds a row. A viewer already at the bottom stays pinned there; one
// scrolled up keeps reading the same rows.
func (p *LiveStreamPanel) Append(row console.Row) {
	follow := p.atBottom()
	before := p.buffer.Len()
	p.buffer.Append(row)
	evicted := before + 1 - p.buffer.Len()
	offset := p.viewport.YOffset
	p.render()
	if follow {
		p.viewport.GotoBottom()
		return
	}
	if evicted > 0 {
		offset -= evicted
		if offset < 0 {
			offset = 0
		}
		p.viewport.SetYOffset(offset)
	}
}

func (p *LiveStreamPanel) atBottom() bool {
	remaining := p.viewport.TotalLineCount() - p.viewport.YOffset - p.viewport.Height
	return remaining <= followThreshold
}

// Rows returns the buffered rows oldest-first.
func (p *LiveStreamPanel) Rows() []console.Row { return p.buffer.Rows() }

// Text returns the buffer as plain text, one row per line.
func (p *LiveStreamPanel) Text() string {
	rows := p.buffer.Rows()
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.Stamp() + row.Text
	}
	return strings.Join(lines, "\n")
}

// Resize sets the viewport size and re-renders at the new width.
func (p *LiveStreamPanel) Resize(width, height int) {
	if height < 1 {
		height = 1
	}
	follow := p.atBottom()
	p.viewport.Width = width
	p.viewport.Height = height
	p.render()
	if follow {
		p.viewport.GotoBottom()
	}
}

// Restyle re-renders after a theme change.
func (p *LiveStreamPanel) Restyle() {
	p.render()
}

// Scroll moves the viewport for a navigation key and reports whether the
// key was one.
func (p *LiveStreamPanel) Scroll(key string) bool {
	switch key {
	case "up":
		p.viewport.LineUp(1)
	case "down":
		p.viewport.LineDown(1)
	case "pgup":
		p.viewport.ViewUp()
	case "pgdown":
		p.viewport.ViewDown()
	case "home":
		p.viewport.GotoTop()
	case "end":
		p.viewport.GotoBottom()
	default:
		return false
	}
	return true
}

// Update forwards mouse wheel events to the viewport.
func (p *LiveStreamPanel) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.MouseMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// View renders the visible part of the buffer.
func (p *LiveStreamPanel) View() string {
	if p.buffer.Len() == 0 {
		return styles.Info.Render("Waiting for data…")
	}
	return p.viewport.View()
}

func (p *LiveStreamPanel) render() {
	rows := p.buffer.Rows()
	lines := make([]string, len(rows))
	width := p.viewport.Width
	for i, row := range rows {
		stamp := row.Stamp()
		text := row.Text
		if width > 0 {
			text = table.Truncate(text, width-len([]rune(stamp)))
		}
		line := styles.Row(row.Class).Render(text)
		if stamp != "" {
			line = styles.Timestamp.Render(stamp) + line
		}
		lines[i] = line
	}
	p.viewport.SetContent(strings.Join(lines, "\n"))
}
