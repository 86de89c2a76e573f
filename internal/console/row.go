package console

import (
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// Row classes produced by the classifiers. The theme maps each to a style.
const (
	ClassNone             = ""
	ClassServerReady      = "event-server-ready"
	ClassServerStarting   = "event-server-starting"
	ClassServerError      = "event-server-error"
	ClassPlayerConnecting = "event-player-connecting"
	ClassPlayerReady      = "event-player-ready"
	ClassPlayerDisconnect = "event-player-disconnect"
	ClassWorldSaved       = "event-world-saved"
	ClassException        = "event-exception"

	ClassLog      = "log"
	ClassLogInfo  = "log-info"
	ClassLogWarn  = "log-warn"
	ClassLogError = "log-error"

	// ClassNotice marks rows the dashboard writes itself, such as reconnect
	// warnings and command echoes.
	ClassNotice = "notice"
)

// Row is one rendered line of a panel.
type Row struct {
	Text  string
	Class string
	// Time is when the row arrived; zero for rows that show no timestamp.
	Time time.Time
}

// Classifier maps event text to a row class.
type Classifier func(text string) string

// Plain leaves every row unclassified.
func Plain(string) string { return ClassNone }

type detectionCheck struct {
	text  string
	extra string
	class string
}

// First match wins.
var detectionChecks = []detectionCheck{
	{text: "Server is ready", class: ClassServerReady},
	{text: "Server is starting", class: ClassServerStarting},
	{text: "Server error", class: ClassServerError},
	{text: "Player", extra: "connecting", class: ClassPlayerConnecting},
	{text: "Player", extra: "ready", class: ClassPlayerReady},
	{text: "Player", extra: "disconnected", class: ClassPlayerDisconnect},
	{text: "World Saved", class: ClassWorldSaved},
	{text: "Exception", class: ClassException},
}

// DetectionClass classifies a detection event.
func DetectionClass(text string) string {
	for _, c := range detectionChecks {
		if !strings.Contains(text, c.text) {
			continue
		}
		if c.extra != "" && !strings.Contains(text, c.extra) {
			continue
		}
		return c.class
	}
	return ClassNone
}

// LogLevelClass classifies a backend log line by its level marker.
func LogLevelClass(text string) string {
	switch {
	case strings.Contains(text, "/INFO"):
		return ClassLogInfo
	case strings.Contains(text, "/WARN"):
		return ClassLogWarn
	case strings.Contains(text, "/ERROR"):
		return ClassLogError
	default:
		return ClassLog
	}
}

// NewRow builds the row for raw event text. Terminal escape sequences are
// stripped so backend colouring cannot corrupt the layout.
func NewRow(text string, classify Classifier, at time.Time) Row {
	clean := ansi.Strip(text)
	if classify == nil {
		classify = Plain
	}
	return Row{Text: clean, Class: classify(clean), Time: at}
}

// Notice builds a dashboard-authored row.
func Notice(text string) Row {
	return Row{Text: text, Class: ClassNotice}
}

// Stamp renders the row's timestamp prefix, or "" when it has none.
func (r Row) Stamp() string {
	if r.Time.IsZero() {
		return ""
	}
	return r.Time.Format("15:04:05") + ": "
}
