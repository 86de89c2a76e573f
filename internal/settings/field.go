// Package settings parses, validates and submits backend configuration
// values, and drives the first-run setup wizard.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the declared type of a setting.
type Type string

const (
	TypeBool   Type = "bool"
	TypeInt    Type = "int"
	TypeString Type = "string"
	TypeArray  Type = "array"
	TypeMap    Type = "map"
)

// Setting is one entry of the backend's settings catalog.
type Setting struct {
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Group       string      `json:"group"`
	Description string      `json:"description"`
	Value       interface{} `json:"value"`
	Min         *int        `json:"min,omitempty"`
	Max         *int        `json:"max,omitempty"`
	Required    bool        `json:"required"`
}

// ValidationError rejects user input before anything is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// booleanFields are the setup fields answered with yes/no words.
var booleanFields = map[string]struct{}{
	"IsDiscordEnabled":          {},
	"UPNPEnabled":               {},
	"ServerVisible":             {},
	"UseSteamP2P":               {},
	"IsSSCMEnabled":             {},
	"IsNewTerrainAndSaveSystem": {},
}

// IsBooleanField reports whether field is answered with a yes/no word.
func IsBooleanField(field string) bool {
	_, ok := booleanFields[field]
	return ok
}

// ParseBool maps a yes/no style answer to a boolean. Unrecognised input is
// false.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1", "ja":
		return true
	case "no", "false", "0", "nej":
		return false
	}
	return false
}

// Parse converts raw user input into the JSON value for s.
func Parse(s Setting, raw string) (interface{}, error) {
	switch s.Type {
	case TypeBool:
		return ParseBool(raw), nil
	case TypeInt:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			if s.Required {
				return nil, &ValidationError{Field: s.Name, Reason: "value is required"}
			}
			return nil, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, &ValidationError{Field: s.Name, Reason: fmt.Sprintf("%q is not a whole number", trimmed)}
		}
		if s.Min != nil && n < *s.Min {
			return nil, &ValidationError{Field: s.Name, Reason: fmt.Sprintf("must be at least %d", *s.Min)}
		}
		if s.Max != nil && n > *s.Max {
			return nil, &ValidationError{Field: s.Name, Reason: fmt.Sprintf("must be at most %d", *s.Max)}
		}
		return n, nil
	case TypeArray:
		if strings.TrimSpace(raw) == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case TypeMap:
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
			return nil, &ValidationError{Field: s.Name, Reason: "invalid JSON object"}
		}
		return m, nil
	default:
		if s.Required && strings.TrimSpace(raw) == "" {
			return nil, &ValidationError{Field: s.Name, Reason: "value is required"}
		}
		return raw, nil
	}
}

// Format renders the current value of s as editable text.
func Format(s Setting) string {
	switch v := s.Value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// Groups returns the group names in first-seen order.
func Groups(settings []Setting) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, s := range settings {
		if seen[s.Group] {
			continue
		}
		seen[s.Group] = true
		groups = append(groups, s.Group)
	}
	return groups
}

// InGroup returns the settings of group in catalog order.
func InGroup(settings []Setting, group string) []Setting {
	var out []Setting
	for _, s := range settings {
		if s.Group == group {
			out = append(out, s)
		}
	}
	return out
}
