package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/profile"
	"github.com/steamserverui/ssui-console/internal/settings"
)

const (
	detailPanelMinWidth = 32
	detailPanelFraction = 0.4
)

// detailTitle and detailLines describe the selected list item for the side
// panel.
func (m *Model) detailTitle() string {
	current := m.currentList()
	if current == nil {
		return "Details"
	}
	item, ok := current.Current()
	if !ok {
		return current.Title
	}
	switch data := item.Data.(type) {
	case api.Backup:
		return "Backup #" + strconv.Itoa(data.Index)
	case api.Player:
		return data.Username
	case settings.Setting:
		return data.Name
	case profile.Profile:
		return "Backend " + data.ID
	}
	return current.Title
}

func (m *Model) detailLines(width int) []string {
	current := m.currentList()
	if current == nil {
		return nil
	}
	item, ok := current.Current()
	if !ok {
		return []string{"Nothing selected"}
	}
	switch data := item.Data.(type) {
	case api.Backup:
		lines := []string{
			"Type:     " + data.Type(),
			"Save:     " + data.BinFile,
		}
		if data.XMLFile != "" {
			lines = append(lines, "World:    "+data.XMLFile)
		}
		if data.MetaFile != "" {
			lines = append(lines, "Meta:     "+data.MetaFile)
		}
		if !data.ModTime.IsZero() {
			lines = append(lines,
				"Modified: "+data.ModTime.Local().Format("2006-01-02 15:04:05"),
				"          "+humanize.RelTime(data.ModTime, m.now(), "ago", "from now"),
			)
		}
		return append(lines, "", "enter restores this backup")
	case api.Player:
		return []string{
			"Name:     " + data.Username,
			"Steam ID: " + data.SteamID,
		}
	case settings.Setting:
		lines := []string{
			"Group: " + data.Group,
			"Type:  " + string(data.Type),
			"Value: " + settings.Format(data),
		}
		if data.Min != nil || data.Max != nil {
			lines = append(lines, "Range: "+rangeText(data.Min, data.Max))
		}
		if data.Required {
			lines = append(lines, "Required")
		}
		if desc := strings.TrimSpace(data.Description); desc != "" {
			lines = append(lines, "")
			lines = append(lines, strings.Split(wordwrap.String(desc, width), "\n")...)
		}
		return append(lines, "", "enter edits this setting")
	case profile.Profile:
		token := "none"
		if data.AuthToken != nil {
			token = "stored"
		}
		lines := []string{
			"URL:   " + data.BaseURL,
			"Token: " + token,
		}
		if data.ID == m.profiles.ActiveID() {
			lines = append(lines, "", "active")
		}
		return lines
	}
	return nil
}

func rangeText(min, max *int) string {
	lo, hi := "-", "-"
	if min != nil {
		lo = strconv.Itoa(*min)
	}
	if max != nil {
		hi = strconv.Itoa(*max)
	}
	return fmt.Sprintf("%s .. %s", lo, hi)
}

// hasSideDetail reports whether the list on screen gets a detail panel on
// the right.
func (m *Model) hasSideDetail() bool {
	if m.currentList() == nil {
		return false
	}
	return m.detailPanelWidth() > 0
}

// detailPanelWidth is 0 when the terminal is too narrow to split.
func (m *Model) detailPanelWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * detailPanelFraction)
	if w < detailPanelMinWidth {
		return 0
	}
	return w
}
