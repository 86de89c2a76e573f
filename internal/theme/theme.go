package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/steamserverui/ssui-console/internal/console"
)

// Palette is the small set of colours a named theme defines.
type Palette struct {
	Name      string
	Text      string
	Muted     string
	Accent    string
	AccentAlt string
	Warning   string
	Surface   string
	Border    string
}

// Palettes lists the built-in themes in rotation order.
var Palettes = []Palette{
	{Name: "Forest Dark", Text: "#d4d4d4", Muted: "#a9a9a9", Accent: "#6a9955", AccentAlt: "#4d7240", Warning: "#ce9178", Surface: "#3e4033", Border: "#3e3e3e"},
	{Name: "Vaxholm Dark", Text: "#d9e6d9", Muted: "#a3b3a3", Accent: "#7a9a7a", AccentAlt: "#5f7a5f", Warning: "#c9a67a", Surface: "#3a4a3a", Border: "#2e3a2e"},
	{Name: "Archipelago Pastel", Text: "#dce7e7", Muted: "#b0c0c0", Accent: "#a3c1ad", AccentAlt: "#8bb394", Warning: "#d9bba3", Surface: "#6e7b7e", Border: "#5e6b6e"},
	{Name: "Colorblind Friendly", Text: "#ffffff", Muted: "#bfbfbf", Accent: "#ffb300", AccentAlt: "#cc8800", Warning: "#ff3b3b", Surface: "#454545", Border: "#383838"},
	{Name: "Cyberpunk Glow", Text: "#e0e0ff", Muted: "#a0a0ff", Accent: "#ff00ff", AccentAlt: "#cc00cc", Warning: "#ff4d4d", Surface: "#4a4a9a", Border: "#3a3a7a"},
	{Name: "Classic", Text: "#00fca9", Muted: "#00c080", Accent: "#0eefa9", AccentAlt: "#cc00cc", Warning: "#ff4d4d", Surface: "#4a4a9a", Border: "#2a2a5a"},
	{Name: "Light Archipelago", Text: "#2a3a33", Muted: "#4a5a53", Accent: "#5f7a5f", AccentAlt: "#6a8a6a", Warning: "#c97a5a", Surface: "#a0b4af", Border: "#b0c4bf"},
}

// DefaultName is the theme used when none is stored.
const DefaultName = "Forest Dark"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Name string

	Loading               *lipgloss.Style
	Item                  *lipgloss.Style
	ItemIndicator         *lipgloss.Style
	SelectedItemIndicator *lipgloss.Style
	SelectedItem          *lipgloss.Style
	Error                 *lipgloss.Style
	Success               *lipgloss.Style
	Info                  *lipgloss.Style
	Header                *lipgloss.Style
	Footer                *lipgloss.Style
	Filter                *lipgloss.Style
	FilterPrompt          *lipgloss.Style
	FilterPlaceholder     *lipgloss.Style
	Cursor                *lipgloss.Style

	Tab         *lipgloss.Style
	ActiveTab   *lipgloss.Style
	NotifiedTab *lipgloss.Style
	Panel       *lipgloss.Style
	Timestamp   *lipgloss.Style

	StatusOnline  *lipgloss.Style
	StatusOffline *lipgloss.Style
	StatusError   *lipgloss.Style

	rows map[string]*lipgloss.Style
}

// Row returns the style for a console row class.
func (s *Styles) Row(class string) *lipgloss.Style {
	if st, ok := s.rows[class]; ok {
		return st
	}
	return s.Item
}

// Build derives the full style set from a palette.
func Build(p Palette) *Styles {
	text := lipgloss.Color(p.Text)
	muted := lipgloss.Color(p.Muted)
	accent := lipgloss.Color(p.Accent)
	accentAlt := lipgloss.Color(p.AccentAlt)
	warning := lipgloss.Color(p.Warning)
	surface := lipgloss.Color(p.Surface)
	border := lipgloss.Color(p.Border)
	errColor := lipgloss.Color("196")

	s := &Styles{
		Name:                  p.Name,
		Loading:               ptr(lipgloss.NewStyle().Foreground(accent).Italic(true)),
		Item:                  ptr(lipgloss.NewStyle().Foreground(text)),
		ItemIndicator:         ptr(lipgloss.NewStyle().Foreground(border)),
		SelectedItemIndicator: ptr(lipgloss.NewStyle().Foreground(accent).Background(surface)),
		SelectedItem:          ptr(lipgloss.NewStyle().Foreground(text).Background(surface).Bold(true)),
		Error:                 ptr(lipgloss.NewStyle().Foreground(errColor).Bold(true)),
		Success:               ptr(lipgloss.NewStyle().Foreground(accent).Bold(true)),
		Info:                  ptr(lipgloss.NewStyle().Foreground(muted)),
		Header:                ptr(lipgloss.NewStyle().Foreground(accent).Bold(true)),
		Footer:                ptr(lipgloss.NewStyle().Foreground(muted)),
		Filter:                ptr(lipgloss.NewStyle().Foreground(text)),
		FilterPrompt:          ptr(lipgloss.NewStyle().Foreground(accent).Bold(true)),
		FilterPlaceholder:     ptr(lipgloss.NewStyle().Foreground(muted)),
		Cursor:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(accent).Blink(true)),
		Tab:                   ptr(lipgloss.NewStyle().Foreground(muted).Padding(0, 1)),
		ActiveTab:             ptr(lipgloss.NewStyle().Foreground(text).Background(surface).Bold(true).Padding(0, 1)),
		NotifiedTab:           ptr(lipgloss.NewStyle().Foreground(warning).Bold(true).Padding(0, 1)),
		Panel:                 ptr(lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)),
		Timestamp:             ptr(lipgloss.NewStyle().Foreground(muted)),
		StatusOnline:          ptr(lipgloss.NewStyle().Foreground(accent).Bold(true)),
		StatusOffline:         ptr(lipgloss.NewStyle().Foreground(warning).Bold(true)),
		StatusError:           ptr(lipgloss.NewStyle().Foreground(errColor).Bold(true)),
	}
	s.rows = map[string]*lipgloss.Style{
		console.ClassServerReady:      ptr(lipgloss.NewStyle().Foreground(accent).Bold(true)),
		console.ClassServerStarting:   ptr(lipgloss.NewStyle().Foreground(accentAlt)),
		console.ClassServerError:      s.Error,
		console.ClassPlayerConnecting: ptr(lipgloss.NewStyle().Foreground(accentAlt)),
		console.ClassPlayerReady:      ptr(lipgloss.NewStyle().Foreground(accent)),
		console.ClassPlayerDisconnect: ptr(lipgloss.NewStyle().Foreground(warning)),
		console.ClassWorldSaved:       ptr(lipgloss.NewStyle().Foreground(muted).Italic(true)),
		console.ClassException:        s.Error,
		console.ClassLog:              s.Item,
		console.ClassLogInfo:          s.Item,
		console.ClassLogWarn:          ptr(lipgloss.NewStyle().Foreground(warning)),
		console.ClassLogError:         s.Error,
		console.ClassNotice:           ptr(lipgloss.NewStyle().Foreground(accentAlt).Italic(true)),
	}
	return s
}

// Lookup returns the palette called name, matching case-insensitively.
func Lookup(name string) (Palette, bool) {
	for _, p := range Palettes {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Palette{}, false
}

// Named returns the styles for name, falling back to the default theme.
func Named(name string) *Styles {
	if p, ok := Lookup(name); ok {
		return Build(p)
	}
	return Default()
}

// Next returns the name of the theme after name in rotation order.
func Next(name string) string {
	for i, p := range Palettes {
		if strings.EqualFold(p.Name, name) {
			return Palettes[(i+1)%len(Palettes)].Name
		}
	}
	return Palettes[0].Name
}

// Names lists the built-in theme names.
func Names() []string {
	out := make([]string, len(Palettes))
	for i, p := range Palettes {
		out[i] = p.Name
	}
	return out
}

var defaultStyles = Build(Palettes[0])

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
