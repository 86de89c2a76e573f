package app

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/logging/events"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/theme"
	"github.com/steamserverui/ssui-console/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	BackendURL string
	Profile    string
	StatePath  string
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Theme      string

	ConsoleMax     int
	EventsMax      int
	LogsMax        int
	ConsoleDelay   time.Duration
	EventsDelay    time.Duration
	LogsDelay      time.Duration
	NoticeDuration time.Duration

	StatusInterval  time.Duration
	PlayersInterval time.Duration
	BackupsInterval time.Duration
	BackupLimit     int
	LegacySave      bool
}

// Intervals returns the poll cadence, with unset entries at their defaults.
func (c Config) Intervals() backend.Intervals {
	iv := backend.DefaultIntervals
	if c.StatusInterval > 0 {
		iv.Status = c.StatusInterval
	}
	if c.PlayersInterval > 0 {
		iv.Players = c.PlayersInterval
	}
	if c.BackupsInterval > 0 {
		iv.Backups = c.BackupsInterval
	}
	return iv
}

// UIOptions maps the configuration onto the dashboard model's options.
func (c Config) UIOptions(client *api.Client, watcher *backend.Watcher) ui.Options {
	return ui.Options{
		Client:         client,
		Watcher:        watcher,
		Width:          c.Width,
		Height:         c.Height,
		ShowFooter:     c.ShowFooter,
		Verbose:        c.Verbose,
		ConsoleMax:     c.ConsoleMax,
		EventsMax:      c.EventsMax,
		LogsMax:        c.LogsMax,
		ConsoleDelay:   c.ConsoleDelay,
		EventsDelay:    c.EventsDelay,
		LogsDelay:      c.LogsDelay,
		NoticeDuration: c.NoticeDuration,
		LegacySave:     c.LegacySave,
	}
}

// Setup opens the persisted profiles and applies the command-line overrides.
func Setup(cfg Config) (*api.Client, error) {
	store, err := profile.Open(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", cfg.StatePath, err)
	}
	if cfg.Profile != "" && !store.SetActive(cfg.Profile) {
		return nil, fmt.Errorf("%w: %s", profile.ErrUnknownProfile, cfg.Profile)
	}
	if cfg.Theme != "" {
		if _, ok := theme.Lookup(cfg.Theme); !ok {
			return nil, fmt.Errorf("unknown theme %q", cfg.Theme)
		}
		store.SetTheme(cfg.Theme)
	}
	return api.NewClient(store, cfg.BackendURL), nil
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	client, err := Setup(cfg)
	if err != nil {
		return err
	}
	watcher := backend.NewWatcher(client, cfg.Intervals(), cfg.BackupLimit)
	defer watcher.Stop()

	model := ui.NewModel(cfg.UIOptions(client, watcher))
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		events.App.Stop("killed")
		return nil
	}
	if err != nil {
		events.App.Stop(err.Error())
		return err
	}
	events.App.Stop("quit")
	return nil
}
