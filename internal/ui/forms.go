package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/settings"
)

// fieldForm is a stack of labelled text inputs. Tab and shift+tab move the
// focus, enter submits, esc cancels.
type fieldForm struct {
	title  string
	help   string
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
}

type formField struct {
	label       string
	placeholder string
	value       string
	secret      bool
	limit       int
}

func newFieldForm(title, help string, fields ...formField) *fieldForm {
	f := &fieldForm{title: title, help: help}
	for i, field := range fields {
		ti := textinput.New()
		ti.Placeholder = field.placeholder
		ti.CharLimit = field.limit
		if ti.CharLimit == 0 {
			ti.CharLimit = 256
		}
		if field.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if field.value != "" {
			ti.SetValue(field.value)
		}
		if i == 0 {
			ti.Focus()
		}
		f.labels = append(f.labels, field.label)
		f.inputs = append(f.inputs, ti)
	}
	return f
}

func (f *fieldForm) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

func (f *fieldForm) Title() string { return f.title }
func (f *fieldForm) Help() string  { return f.help }
func (f *fieldForm) Error() string { return f.err }

func (f *fieldForm) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// Update returns the input's command plus whether the form was submitted or
// cancelled.
func (f *fieldForm) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return nil, false, true
		case "enter":
			return nil, true, false
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return nil, false, false
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return nil, false, false
		case "ctrl+u":
			f.inputs[f.focus].SetValue("")
			f.inputs[f.focus].CursorStart()
			return nil, false, false
		}
	}
	if len(f.inputs) == 0 {
		return nil, false, false
	}
	updated, cmd := f.inputs[f.focus].Update(msg)
	f.inputs[f.focus] = updated
	return cmd, false, false
}

func (f *fieldForm) InputView() string {
	lines := make([]string, 0, len(f.inputs))
	for i, input := range f.inputs {
		label := f.labels[i]
		if label != "" {
			label += ": "
		}
		lines = append(lines, label+input.View())
	}
	return strings.Join(lines, "\n")
}

type loginForm struct {
	*fieldForm
}

func newLoginForm() *loginForm {
	return &loginForm{newFieldForm(
		"Sign in",
		"Enter to sign in. Tab to switch fields. Ctrl+S first-time setup. Ctrl+B backends.",
		formField{label: "Username", placeholder: "admin", limit: 64},
		formField{label: "Password", secret: true, limit: 128},
	)}
}

type setupForm struct {
	*fieldForm
	step settings.Step
}

func newSetupForm(w *settings.Wizard, step settings.Step) *setupForm {
	fields := []formField{}
	if step.PrimaryLabel != "" {
		fields = append(fields, formField{label: step.PrimaryLabel, limit: 128})
	}
	if step.SecondaryLabel != "" {
		fields = append(fields, formField{label: step.SecondaryLabel, secret: step.SecondarySecret, limit: 128})
	}
	pos, total := w.Position(step.ID)
	title := fmt.Sprintf("%s (%d/%d)", step.Title, pos, total)
	return &setupForm{fieldForm: newFieldForm(title, "Enter to continue. Esc to go back to sign in.", fields...), step: step}
}

type settingForm struct {
	*fieldForm
	setting settings.Setting
}

func newSettingForm(s settings.Setting) *settingForm {
	help := "Enter to save. Esc to cancel."
	switch s.Type {
	case settings.TypeBool:
		help = "yes/no. " + help
	case settings.TypeArray:
		help = "Comma separated. " + help
	case settings.TypeMap:
		help = "JSON object. " + help
	}
	return &settingForm{
		fieldForm: newFieldForm("Edit "+s.Name, help, formField{label: s.Name, value: settings.Format(s), limit: 4096}),
		setting:   s,
	}
}

type backendForm struct {
	*fieldForm
}

func newBackendForm() *backendForm {
	return &backendForm{newFieldForm(
		"Add backend",
		"URL is http(s)://host:port or unix:///path/to.sock. Leave the id empty to generate one.",
		formField{label: "URL", placeholder: "http://localhost:8443", limit: 512},
		formField{label: "Id", placeholder: "(generated)", limit: 64},
	)}
}

func (m *Model) handleLoginForm(msg tea.Msg) (bool, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			return true, m.setView(ViewSetup)
		case "ctrl+b":
			return true, m.setView(ViewBackends)
		}
	}
	cmd, done, cancel := m.loginForm.Update(msg)
	if cancel {
		return true, nil
	}
	if done {
		if m.loading {
			return true, nil
		}
		username := strings.TrimSpace(m.loginForm.Value(0))
		password := m.loginForm.Value(1)
		if username == "" || password == "" {
			m.loginForm.err = "Username and password are required"
			return true, nil
		}
		m.loginForm.err = ""
		return true, m.loginCmd(username, password)
	}
	return true, cmd
}

func (m *Model) handleSetupForm(msg tea.Msg) (bool, tea.Cmd) {
	cmd, done, cancel := m.setupForm.Update(msg)
	if cancel {
		return true, m.setView(ViewLogin)
	}
	if done {
		if m.loading {
			return true, nil
		}
		return true, m.wizardSubmitCmd(m.setupForm.step.ID, m.setupForm.Value(0), m.setupForm.Value(1))
	}
	return true, cmd
}

func (m *Model) handleSettingForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.settingForm == nil {
		return false, nil
	}
	cmd, done, cancel := m.settingForm.Update(msg)
	if cancel {
		m.settingForm = nil
		m.mode = ModeNormal
		return true, nil
	}
	if done {
		setting := m.settingForm.setting
		raw := m.settingForm.Value(0)
		if _, err := settings.Parse(setting, raw); err != nil {
			m.settingForm.err = err.Error()
			return true, nil
		}
		m.settingForm = nil
		m.mode = ModeNormal
		return true, m.saveSettingCmd(setting, raw)
	}
	return true, cmd
}

func (m *Model) handleBackendForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.backendForm == nil {
		return false, nil
	}
	cmd, done, cancel := m.backendForm.Update(msg)
	if cancel {
		m.backendForm = nil
		m.mode = ModeNormal
		return true, nil
	}
	if done {
		url := strings.TrimSpace(m.backendForm.Value(0))
		id := strings.TrimSpace(m.backendForm.Value(1))
		if err := validateBackendURL(url); err != "" {
			m.backendForm.err = err
			return true, nil
		}
		if id == "" {
			m.profiles.Add(url)
		} else {
			m.profiles.Set(id, url)
		}
		m.backendForm = nil
		m.mode = ModeNormal
		m.refreshBackendList()
		m.setInfo("Backend saved")
		return true, nil
	}
	return true, cmd
}

func validateBackendURL(url string) string {
	switch {
	case url == "":
		return "URL is required"
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return ""
	case strings.HasPrefix(url, "unix://") && len(url) > len("unix://"):
		return ""
	default:
		return "URL must start with http://, https:// or unix://"
	}
}

func (m *Model) startSettingForm(s settings.Setting) {
	m.settingForm = newSettingForm(s)
	m.mode = ModeSettingForm
}

func (m *Model) startBackendForm() {
	m.backendForm = newBackendForm()
	m.mode = ModeBackendForm
}

func (m *Model) activeForm() *fieldForm {
	switch {
	case m.view == ViewLogin && m.loginForm != nil:
		return m.loginForm.fieldForm
	case m.view == ViewSetup && m.setupForm != nil:
		return m.setupForm.fieldForm
	case m.mode == ModeSettingForm && m.settingForm != nil:
		return m.settingForm.fieldForm
	case m.mode == ModeBackendForm && m.backendForm != nil:
		return m.backendForm.fieldForm
	}
	return nil
}

func (m *Model) viewForm(f *fieldForm, header, message string) string {
	lines := []string{}
	if header != "" {
		lines = append(lines, header)
	}
	lines = append(lines, styles.Header.Render(f.Title()), "")
	if message != "" {
		lines = append(lines, message, "")
	}
	if len(f.inputs) > 0 {
		lines = append(lines, f.InputView(), "")
	}
	if err := f.Error(); err != "" {
		lines = append(lines, styles.Error.Render(err), "")
	}
	if m.errMsg != "" {
		lines = append(lines, styles.Error.Render("Error: "+m.errMsg), "")
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styles.Info.Render(info), "")
	}
	lines = append(lines, styles.Footer.Render(f.Help()))
	return strings.Join(lines, "\n")
}
