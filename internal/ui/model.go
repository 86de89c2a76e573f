package ui

import (
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/console"
	"github.com/steamserverui/ssui-console/internal/data/dispatcher"
	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/settings"
	"github.com/steamserverui/ssui-console/internal/state"
	"github.com/steamserverui/ssui-console/internal/stream"
	"github.com/steamserverui/ssui-console/internal/theme"
	"github.com/steamserverui/ssui-console/internal/ui/command"
	uistate "github.com/steamserverui/ssui-console/internal/ui/state"
)

type list = uistate.List

// View is the top-level screen.
type View int

const (
	ViewHome View = iota
	ViewLogin
	ViewSetup
	ViewBackends
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewSetup:
		return "setup"
	case ViewBackends:
		return "backends"
	default:
		return "home"
	}
}

// Tab is a page of the home view.
type Tab int

const (
	TabConsole Tab = iota
	TabEvents
	TabLogs
	TabBackups
	TabPlayers
	TabSettings
	tabCount
)

var tabTitles = [tabCount]string{"Console", "Events", "Logs", "Backups", "Players", "Settings"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "unknown"
	}
	return tabTitles[t]
}

// Mode is the input focus inside the current view.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSettingForm
	ModeBackendForm
	ModeCommandPrompt
	ModeConfirm
)

const (
	tabNotifyDuration = 3 * time.Second
	actionTimeout     = 30 * time.Second
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	Client  *api.Client
	Watcher *backend.Watcher
	// Dialer opens the event streams; defaults to Client.
	Dialer stream.Dialer
	// Clock schedules stream reconnects; defaults to the runtime clock.
	Clock stream.Clock

	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool

	ConsoleMax     int
	EventsMax      int
	LogsMax        int
	ConsoleDelay   time.Duration
	EventsDelay    time.Duration
	LogsDelay      time.Duration
	LegacySave     bool
	NoticeDuration time.Duration
}

// Model implements the Bubble Tea model for the dashboard.
type Model struct {
	view View
	tab  Tab
	mode Mode

	loading      bool
	pendingID    string
	pendingLabel string
	errMsg       string
	infoMsg      string
	infoExpire   time.Time
	width        int
	height       int
	fixedWidth   bool
	fixedHeight  bool
	showFooter   bool
	verbose      bool

	client     *api.Client
	profiles   *profile.Store
	backend    *backend.Watcher
	dispatcher *dispatcher.Dispatcher
	status     state.StatusStore
	players    state.PlayerStore
	backups    state.BackupStore
	submitter  *settings.Submitter
	wizard     *settings.Wizard
	bus        *command.Bus

	panels       [tabCount]*LiveStreamPanel
	streamPanel  map[string]*LiveStreamPanel
	streamEvents chan stream.Event
	done         chan struct{}
	gate         *stream.Gate
	dialer       stream.Dialer
	clock        stream.Clock
	listening    bool
	notified     map[Tab]time.Time

	lists       map[Tab]*list
	backendList *list
	catalog     []settings.Setting
	sscmEnabled bool

	loginForm   *loginForm
	setupForm   *setupForm
	settingForm *settingForm
	backendForm *backendForm
	prompt      *commandPrompt
	confirm     *confirmPrompt

	spinner           spinner.Model
	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler

	now  func() time.Time
	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// NewModel initialises the dashboard on the home view with the Console tab
// showing.
func NewModel(opts Options) *Model {
	client := opts.Client
	if client == nil {
		client = api.NewClient(profile.New(), "")
	}
	profiles := client.Profiles()
	styles = theme.Named(profiles.Theme())

	status := state.NewStatusStore()
	players := state.NewPlayerStore()
	backups := state.NewBackupStore()
	submitter := settings.NewSubmitter(client, opts.LegacySave)
	if opts.NoticeDuration > 0 {
		submitter.SetNoticeDuration(opts.NoticeDuration)
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = client
	}
	clock := opts.Clock
	if clock == nil {
		clock = stream.RealClock{}
	}

	m := &Model{
		view:         ViewHome,
		tab:          TabConsole,
		mode:         ModeNormal,
		showFooter:   opts.ShowFooter,
		verbose:      opts.Verbose,
		client:       client,
		profiles:     profiles,
		backend:      opts.Watcher,
		dispatcher:   dispatcher.New(status, players, backups),
		status:       status,
		players:      players,
		backups:      backups,
		submitter:    submitter,
		wizard:       settings.NewWizard(client, submitter),
		bus:          command.New(actionTimeout),
		streamPanel:  map[string]*LiveStreamPanel{},
		streamEvents: make(chan stream.Event, 64),
		done:         make(chan struct{}),
		gate:         stream.NewGate(true),
		dialer:       dialer,
		clock:        clock,
		notified:     map[Tab]time.Time{},
		lists: map[Tab]*list{
			TabBackups:  uistate.NewList("backups", "Backups", nil),
			TabPlayers:  uistate.NewList("players", "Players", nil),
			TabSettings: uistate.NewList("settings", "Settings", nil),
		},
		backendList: uistate.NewList("backends", "Backends", nil),
		now:         time.Now,
		tick:        tea.Tick,
	}
	m.panels[TabConsole] = newPanel(PanelConfig{
		ID:             "console",
		Endpoints:      []string{"/console"},
		MaxMessages:    opts.ConsoleMax,
		ReconnectDelay: durationOr(opts.ConsoleDelay, 5*time.Second),
		OpenNotice:     "Interface ready.",
		ErrorNotice:    "Warning: Console stream unavailable. Retrying...",
	})
	m.panels[TabEvents] = newPanel(PanelConfig{
		ID:             "events",
		Endpoints:      []string{"/events"},
		MaxMessages:    opts.EventsMax,
		Classify:       console.DetectionClass,
		Timestamps:     true,
		ReconnectDelay: durationOr(opts.EventsDelay, 2*time.Second),
	})
	m.panels[TabLogs] = newPanel(PanelConfig{
		ID:             "logs",
		Endpoints:      []string{"/logs/info", "/logs/warn", "/logs/error"},
		MaxMessages:    opts.LogsMax,
		Classify:       console.LogLevelClass,
		ReconnectDelay: durationOr(opts.LogsDelay, 5*time.Second),
	})
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.resizePanels()
	m.refreshBackendList()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	m.spinner = sp

	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// Init is part of the tea.Model interface. It starts the always-on streams,
// begins listening for stream and poll results and probes authentication.
func (m *Model) Init() tea.Cmd {
	m.listening = true
	cmds := []tea.Cmd{
		waitForStreamEvent(m.streamEvents, m.done),
		m.checkAuthCmd(),
		m.sscmEnabledCmd(),
	}
	m.startPanel(TabConsole)
	m.startPanel(TabEvents)
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Close tears down every stream subscription. Call it once the program has
// exited.
func (m *Model) Close() {
	select {
	case <-m.done:
		return
	default:
	}
	close(m.done)
	for _, p := range m.panels {
		if p != nil {
			p.Close()
		}
	}
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handled, cmd := m.handleActiveForm(msg); handled {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	return m, m.finishUpdate(cmds)
}

func (m *Model) handleActiveForm(msg tea.Msg) (bool, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); !ok {
		return false, nil
	}
	switch {
	case m.view == ViewLogin && m.loginForm != nil:
		return m.handleLoginForm(msg)
	case m.view == ViewSetup && m.setupForm != nil:
		return m.handleSetupForm(msg)
	}
	switch m.mode {
	case ModeSettingForm:
		return m.handleSettingForm(msg)
	case ModeBackendForm:
		return m.handleBackendForm(msg)
	case ModeCommandPrompt:
		return m.handleCommandPrompt(msg)
	case ModeConfirm:
		return m.handleConfirm(msg)
	default:
		return false, nil
	}
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):          m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):   m.handleWindowSizeMsg,
		reflect.TypeOf(tea.MouseMsg{}):        m.handleMouseMsg,
		reflect.TypeOf(spinner.TickMsg{}):     m.handleSpinnerTickMsg,
		reflect.TypeOf(backendEventMsg{}):     m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):      m.handleBackendDoneMsg,
		reflect.TypeOf(streamEventMsg{}):      m.handleStreamEventMsg,
		reflect.TypeOf(streamDoneMsg{}):       m.handleStreamDoneMsg,
		reflect.TypeOf(tabNotifyExpiredMsg{}): m.handleTabNotifyExpiredMsg,
		reflect.TypeOf(infoExpiredMsg{}):      m.handleInfoExpiredMsg,
		reflect.TypeOf(actionResult{}):        m.handleActionResultMsg,
		reflect.TypeOf(authCheckedMsg{}):      m.handleAuthCheckedMsg,
		reflect.TypeOf(loginResultMsg{}):      m.handleLoginResultMsg,
		reflect.TypeOf(backendSwitchedMsg{}):  m.handleBackendSwitchedMsg,
		reflect.TypeOf(catalogLoadedMsg{}):    m.handleCatalogLoadedMsg,
		reflect.TypeOf(settingSavedMsg{}):     m.handleSettingSavedMsg,
		reflect.TypeOf(wizardResultMsg{}):     m.handleWizardResultMsg,
		reflect.TypeOf(sscmEnabledMsg{}):      m.handleSSCMEnabledMsg,
		reflect.TypeOf(sscmResultMsg{}):       m.handleSSCMResultMsg,
		reflect.TypeOf(clipboardResultMsg{}):  m.handleClipboardResultMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// setView switches screens and keeps the home view's stream ownership in
// step: streams only reconnect while home is showing.
func (m *Model) setView(v View) tea.Cmd {
	if m.view == v {
		return nil
	}
	events.UI.ViewChange(m.view.String(), v.String())
	m.view = v
	m.mode = ModeNormal
	m.gate.Set(v == ViewHome)
	switch v {
	case ViewHome:
		m.loginForm = nil
		m.setupForm = nil
		for _, p := range m.panels {
			if p != nil && p.Started() {
				p.Connect()
			}
		}
	case ViewLogin:
		m.loginForm = newLoginForm()
	case ViewSetup:
		m.setupForm = newSetupForm(m.wizard, m.wizard.First())
	case ViewBackends:
		m.refreshBackendList()
	}
	return nil
}

// showTab makes t the visible tab, starting its stream or loading its data
// the first time it is shown.
func (m *Model) showTab(t Tab) tea.Cmd {
	if t < 0 || t >= tabCount {
		return nil
	}
	if m.tab != t {
		events.UI.TabShow(t.String())
	}
	m.tab = t
	m.errMsg = ""
	m.startPanel(t)
	if t == TabSettings && m.catalog == nil {
		return m.loadCatalogCmd()
	}
	return nil
}
