package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/steamserverui/ssui-console/internal/app"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/settings"
	"github.com/steamserverui/ssui-console/internal/theme"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envBackendURL   = "SSUI_CONSOLE_BACKEND"
	envProfile      = "SSUI_CONSOLE_PROFILE"
	envStateFile    = "SSUI_CONSOLE_STATE_FILE"
	envWidth        = "SSUI_CONSOLE_WIDTH"
	envHeight       = "SSUI_CONSOLE_HEIGHT"
	envShowFooter   = "SSUI_CONSOLE_FOOTER"
	envVerbose      = "SSUI_CONSOLE_VERBOSE"
	envTheme        = "SSUI_CONSOLE_THEME"
	envConsoleMax   = "SSUI_CONSOLE_CONSOLE_MAX"
	envEventsMax    = "SSUI_CONSOLE_EVENTS_MAX"
	envLogsMax      = "SSUI_CONSOLE_LOGS_MAX"
	envConsoleDelay = "SSUI_CONSOLE_CONSOLE_RECONNECT"
	envEventsDelay  = "SSUI_CONSOLE_EVENTS_RECONNECT"
	envLogsDelay    = "SSUI_CONSOLE_LOGS_RECONNECT"
	envNotice       = "SSUI_CONSOLE_NOTICE_DURATION"
	envPollStatus   = "SSUI_CONSOLE_POLL_STATUS"
	envPollPlayers  = "SSUI_CONSOLE_POLL_PLAYERS"
	envPollBackups  = "SSUI_CONSOLE_POLL_BACKUPS"
	envBackupLimit  = "SSUI_CONSOLE_BACKUP_LIMIT"
	envLegacySave   = "SSUI_CONSOLE_LEGACY_SAVE"
	envTrace        = "SSUI_CONSOLE_TRACE"
	envLogFile      = "SSUI_CONSOLE_LOG_FILE"
)

const defaultBackendURL = "http://localhost:8443"

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("ssui-console", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	backendURL := fs.String("backend", envOrDefault(env, envBackendURL, defaultBackendURL), "URL of the default backend: http(s)://host:port or unix:///path/to.sock")
	profileID := fs.String("profile", envOrDefault(env, envProfile, ""), "backend profile to activate on start")
	stateFile := fs.String("state-file", envOrDefault(env, envStateFile, profile.DefaultStatePath()), "path to the persisted profiles and preferences")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "print success messages for actions")
	themeName := fs.String("theme", envOrDefault(env, envTheme, ""), "theme name, e.g. \"Forest Dark\"")
	consoleMax := fs.Int("console-max", envOrInt(env, envConsoleMax, 500), "rows kept in the console panel")
	eventsMax := fs.Int("events-max", envOrInt(env, envEventsMax, 500), "rows kept in the events panel")
	logsMax := fs.Int("logs-max", envOrInt(env, envLogsMax, 500), "rows kept in the logs panel")
	consoleDelay := fs.Duration("console-reconnect", envOrDuration(env, envConsoleDelay, 5*time.Second), "delay before the console stream reconnects")
	eventsDelay := fs.Duration("events-reconnect", envOrDuration(env, envEventsDelay, 2*time.Second), "delay before the events stream reconnects")
	logsDelay := fs.Duration("logs-reconnect", envOrDuration(env, envLogsDelay, 5*time.Second), "delay before the logs stream reconnects")
	notice := fs.Duration("notice-duration", envOrDuration(env, envNotice, settings.DefaultNoticeDuration), "how long setting save notices stay visible (at most 30s)")
	pollStatus := fs.Duration("poll-status", envOrDuration(env, envPollStatus, 3500*time.Millisecond), "server status refresh interval")
	pollPlayers := fs.Duration("poll-players", envOrDuration(env, envPollPlayers, 10*time.Second), "player list refresh interval")
	pollBackups := fs.Duration("poll-backups", envOrDuration(env, envPollBackups, 30*time.Second), "backup list refresh interval")
	backupLimit := fs.Int("backup-limit", envOrInt(env, envBackupLimit, 0), "newest backups to list (0 lists all)")
	legacySave := fs.Bool("legacy-save", envOrBool(env, envLegacySave, false), "post settings to the legacy /saveconfig endpoint")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	cfg := Config{
		App: app.Config{
			BackendURL:      strings.TrimSpace(*backendURL),
			Profile:         strings.TrimSpace(*profileID),
			StatePath:       *stateFile,
			Width:           *width,
			Height:          *height,
			ShowFooter:      *footer,
			Verbose:         *verbose,
			Theme:           strings.TrimSpace(*themeName),
			ConsoleMax:      *consoleMax,
			EventsMax:       *eventsMax,
			LogsMax:         *logsMax,
			ConsoleDelay:    *consoleDelay,
			EventsDelay:     *eventsDelay,
			LogsDelay:       *logsDelay,
			NoticeDuration:  *notice,
			StatusInterval:  *pollStatus,
			PlayersInterval: *pollPlayers,
			BackupsInterval: *pollBackups,
			BackupLimit:     *backupLimit,
			LegacySave:      *legacySave,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"backend":     *backendURL,
			"profile":     *profileID,
			"stateFile":   *stateFile,
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"footer":      strconv.FormatBool(*footer),
			"trace":       strconv.FormatBool(*trace),
			"verbose":     strconv.FormatBool(*verbose),
			"theme":       *themeName,
			"legacySave":  strconv.FormatBool(*legacySave),
			"backupLimit": strconv.Itoa(*backupLimit),
			"logFile":     *logFile,
			"notice":      notice.String(),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects values the dashboard cannot run with.
func Validate(cfg Config) error {
	a := cfg.App
	if url := a.BackendURL; url != "" &&
		!strings.HasPrefix(url, "http://") &&
		!strings.HasPrefix(url, "https://") &&
		!strings.HasPrefix(url, "unix://") {
		return fmt.Errorf("backend must start with http://, https:// or unix:// (got %q)", url)
	}
	if a.Theme != "" {
		if _, ok := theme.Lookup(a.Theme); !ok {
			return fmt.Errorf("unknown theme %q (known: %s)", a.Theme, strings.Join(theme.Names(), ", "))
		}
	}
	for name, n := range map[string]int{"console-max": a.ConsoleMax, "events-max": a.EventsMax, "logs-max": a.LogsMax} {
		if n <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", name, n)
		}
	}
	if a.BackupLimit < 0 {
		return fmt.Errorf("backup-limit must be >= 0 (got %d)", a.BackupLimit)
	}
	for name, d := range map[string]time.Duration{
		"console-reconnect": a.ConsoleDelay,
		"events-reconnect":  a.EventsDelay,
		"logs-reconnect":    a.LogsDelay,
		"notice-duration":   a.NoticeDuration,
		"poll-status":       a.StatusInterval,
		"poll-players":      a.PlayersInterval,
		"poll-backups":      a.BackupsInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive (got %s)", name, d)
		}
	}
	if a.NoticeDuration > settings.MaxNoticeDuration {
		return fmt.Errorf("notice-duration must be at most %s (got %s)", settings.MaxNoticeDuration, a.NoticeDuration)
	}
	return nil
}
