package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/logging/events"
)

// StepKind says what submitting a wizard step does.
type StepKind int

const (
	// StepInfo only navigates.
	StepInfo StepKind = iota
	// StepConfig saves one config field.
	StepConfig
	// StepAccount registers the admin account.
	StepAccount
	// StepFinalize completes setup.
	StepFinalize
)

// Step is one page of the setup wizard.
type Step struct {
	ID             string
	Title          string
	Message        string
	PrimaryLabel   string
	SecondaryLabel string
	// SecondarySecret masks the secondary input.
	SecondarySecret bool
	Kind            StepKind
	ConfigField     string
	NextStep        string
}

// FirstStep is where setup starts.
const FirstStep = "welcome"

// DefaultSteps is the setup flow offered to a fresh backend.
var DefaultSteps = []Step{
	{
		ID:       "welcome",
		Title:    "Welcome to SteamServerUI",
		Message:  "This wizard prepares the backend for first use.",
		Kind:     StepInfo,
		NextStep: "pls_read",
	},
	{
		ID:       "pls_read",
		Title:    "Before you start",
		Message:  "Settings saved here can be changed later from the Settings tab.",
		Kind:     StepInfo,
		NextStep: "server_name",
	},
	{
		ID:           "server_name",
		Title:        "Server name",
		Message:      "The name players see in the server browser.",
		PrimaryLabel: "Server name",
		Kind:         StepConfig,
		ConfigField:  "ServerName",
		NextStep:     "server_visible",
	},
	{
		ID:           "server_visible",
		Title:        "Visibility",
		Message:      "List the server publicly? (yes/no)",
		PrimaryLabel: "Visible",
		Kind:         StepConfig,
		ConfigField:  "ServerVisible",
		NextStep:     "discord",
	},
	{
		ID:           "discord",
		Title:        "Discord integration",
		Message:      "Enable the Discord bot? (yes/no)",
		PrimaryLabel: "Discord enabled",
		Kind:         StepConfig,
		ConfigField:  "IsDiscordEnabled",
		NextStep:     "admin_account",
	},
	{
		ID:              "admin_account",
		Title:           "Admin account",
		Message:         "Create the first administrator.",
		PrimaryLabel:    "Username",
		SecondaryLabel:  "Password",
		SecondarySecret: true,
		Kind:            StepAccount,
		NextStep:        "finalize",
	},
	{
		ID:      "finalize",
		Title:   "Finish setup",
		Message: "Apply the configuration and enable authentication.",
		Kind:    StepFinalize,
	},
}

// SetupBackend is what the wizard needs from the API client.
type SetupBackend interface {
	Poster
	RegisterAdmin(ctx context.Context, creds api.Credentials) error
	FinalizeSetup(ctx context.Context) (api.FinalizeResult, error)
}

// Wizard drives the setup steps.
type Wizard struct {
	backend   SetupBackend
	submitter *Submitter
	steps     map[string]Step
	order     []string
}

// NewWizard returns a wizard over steps, or DefaultSteps when none are given.
func NewWizard(backend SetupBackend, submitter *Submitter, steps ...Step) *Wizard {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	w := &Wizard{backend: backend, submitter: submitter, steps: make(map[string]Step, len(steps))}
	for _, s := range steps {
		w.steps[s.ID] = s
		w.order = append(w.order, s.ID)
	}
	return w
}

// Step looks a step up by id.
func (w *Wizard) Step(id string) (Step, bool) {
	s, ok := w.steps[id]
	return s, ok
}

// First returns the opening step.
func (w *Wizard) First() Step {
	if s, ok := w.steps[FirstStep]; ok {
		return s
	}
	return w.steps[w.order[0]]
}

// Position returns the 1-based index of id and the step count.
func (w *Wizard) Position(id string) (int, int) {
	for i, s := range w.order {
		if s == id {
			return i + 1, len(w.order)
		}
	}
	return 0, len(w.order)
}

// Submit runs step id with the entered values. Navigation steps never
// contact the backend.
func (w *Wizard) Submit(ctx context.Context, id, primary, secondary string) Result {
	step, ok := w.steps[id]
	if !ok {
		return w.submitter.failure("Unknown setup step "+id, errors.New("unknown step"))
	}
	switch step.Kind {
	case StepConfig:
		var value interface{} = primary
		if IsBooleanField(step.ConfigField) {
			value = ParseBool(primary)
		}
		return w.submitter.submit(ctx, step.ConfigField, value, "Config saved!", step.NextStep)
	case StepAccount:
		creds := api.Credentials{Username: strings.TrimSpace(primary), Password: secondary}
		if creds.Username == "" || creds.Password == "" {
			err := &ValidationError{Field: "admin_account", Reason: "username and password are required"}
			return w.submitter.failure("Username and password are required", err)
		}
		if err := w.backend.RegisterAdmin(ctx, creds); err != nil {
			events.Settings.Result(step.ID, err)
			return w.submitter.failure(failureMessage(err), err)
		}
		events.Settings.Result(step.ID, nil)
		return Result{Message: "Admin account saved!", Duration: w.submitter.duration, NextStep: step.NextStep}
	case StepFinalize:
		res, err := w.backend.FinalizeSetup(ctx)
		if err != nil {
			events.Settings.Result(step.ID, err)
			return w.submitter.failure(failureMessage(err), err)
		}
		events.Settings.Result(step.ID, nil)
		msg := res.Message
		if msg == "" {
			msg = "Setup complete"
		}
		if res.RestartHint != "" {
			msg += " " + res.RestartHint
		}
		return Result{Message: msg, Duration: w.submitter.duration, NextStep: step.NextStep}
	default:
		return Result{NextStep: step.NextStep, Duration: w.submitter.duration}
	}
}
