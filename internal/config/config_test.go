package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.BackendURL != defaultBackendURL {
		t.Fatalf("expected default backend, got %q", cfg.App.BackendURL)
	}
	if cfg.App.ConsoleMax != 500 || cfg.App.EventsMax != 500 {
		t.Fatalf("unexpected buffer sizes %d/%d", cfg.App.ConsoleMax, cfg.App.EventsMax)
	}
	if cfg.App.ConsoleDelay != 5*time.Second || cfg.App.EventsDelay != 2*time.Second {
		t.Fatalf("unexpected reconnect delays %v/%v", cfg.App.ConsoleDelay, cfg.App.EventsDelay)
	}
	if cfg.App.StatusInterval != 3500*time.Millisecond {
		t.Fatalf("unexpected status interval %v", cfg.App.StatusInterval)
	}
	if cfg.App.LogsDelay != 5*time.Second || cfg.App.NoticeDuration != 3*time.Second {
		t.Fatalf("unexpected logs delay/notice %v/%v", cfg.App.LogsDelay, cfg.App.NoticeDuration)
	}
	if cfg.App.StatePath == "" {
		t.Fatalf("expected a default state path")
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadArgsEnvironmentFallback(t *testing.T) {
	env := []string{
		"SSUI_CONSOLE_BACKEND=unix:///run/ssui.sock",
		"SSUI_CONSOLE_WIDTH=120",
		"SSUI_CONSOLE_FOOTER=true",
		"SSUI_CONSOLE_EVENTS_RECONNECT=750ms",
		"SSUI_CONSOLE_THEME=Classic",
		"SSUI_CONSOLE_LEGACY_SAVE=1",
		"SSUI_CONSOLE_LOGS_RECONNECT=9s",
		"SSUI_CONSOLE_NOTICE_DURATION=12s",
	}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.BackendURL != "unix:///run/ssui.sock" {
		t.Fatalf("unexpected backend %q", cfg.App.BackendURL)
	}
	if cfg.App.Width != 120 || !cfg.App.ShowFooter {
		t.Fatalf("unexpected layout %+v", cfg.App)
	}
	if cfg.App.EventsDelay != 750*time.Millisecond {
		t.Fatalf("unexpected events delay %v", cfg.App.EventsDelay)
	}
	if cfg.App.LogsDelay != 9*time.Second || cfg.App.NoticeDuration != 12*time.Second {
		t.Fatalf("unexpected logs delay/notice %v/%v", cfg.App.LogsDelay, cfg.App.NoticeDuration)
	}
	if cfg.App.Theme != "Classic" || !cfg.App.LegacySave {
		t.Fatalf("unexpected theme/legacy %q %v", cfg.App.Theme, cfg.App.LegacySave)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := LoadArgs(
		[]string{"-backend", "https://game.example:8443", "-profile", "lab", "-trace", "-log-file", "trace.log"},
		[]string{"SSUI_CONSOLE_BACKEND=http://ignored:1"},
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.BackendURL != "https://game.example:8443" {
		t.Fatalf("expected flag to win, got %q", cfg.App.BackendURL)
	}
	if cfg.App.Profile != "lab" {
		t.Fatalf("unexpected profile %q", cfg.App.Profile)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "trace.log" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.Flags["backend"] != "https://game.example:8443" {
		t.Fatalf("unexpected flags map %v", cfg.Flags)
	}
	if len(cfg.Args) != 7 {
		t.Fatalf("expected args preserved, got %v", cfg.Args)
	}
}

func TestInvalidEnvironmentFallsBack(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"SSUI_CONSOLE_HEIGHT=tall", "SSUI_CONSOLE_POLL_STATUS=soon"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Height != 0 {
		t.Fatalf("expected fallback height, got %d", cfg.App.Height)
	}
	if cfg.App.StatusInterval != 3500*time.Millisecond {
		t.Fatalf("expected fallback interval, got %v", cfg.App.StatusInterval)
	}
}

func TestNegativeSizesRejected(t *testing.T) {
	if _, err := LoadArgs([]string{"-width", "-1"}, nil); err == nil {
		t.Fatalf("expected negative width to fail")
	}
	if _, err := LoadArgs([]string{"-height", "-5"}, nil); err == nil {
		t.Fatalf("expected negative height to fail")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string][]string{
		"backend must start": {"-backend", "ftp://host"},
		"unknown theme":      {"-theme", "Neon Nights"},
		"console-max":        {"-console-max", "0"},
		"backup-limit":       {"-backup-limit", "-2"},
		"poll-players":       {"-poll-players", "0s"},
		"logs-reconnect":     {"-logs-reconnect", "0s"},
		"at most 30s":        {"-notice-duration", "45s"},
	}
	for want, args := range cases {
		cfg, err := LoadArgs(args, nil)
		if err != nil {
			t.Fatalf("load %v: %v", args, err)
		}
		err = Validate(cfg)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q error for %v, got %v", want, args, err)
		}
	}
}
