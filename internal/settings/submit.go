package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/logging/events"
)

const (
	// SaveEndpoint accepts a single-key {field: value} document.
	SaveEndpoint = "/api/v2/settings/save"
	// LegacySaveEndpoint is the same contract on older backends.
	LegacySaveEndpoint = "/api/v2/saveconfig"
	// CatalogEndpoint lists every setting with its metadata.
	CatalogEndpoint = "/api/v2/settings"

	// FallbackMessage is shown when a failure carries no server message.
	FallbackMessage = "Action failed!"

	DefaultNoticeDuration = 3 * time.Second
	MaxNoticeDuration     = 30 * time.Second
)

// Poster is the part of the API client the submitter needs.
type Poster interface {
	JSON(ctx context.Context, method, endpoint string, in, out interface{}) error
}

// Result is the outcome of a submission, ready to show as a notification.
type Result struct {
	Message  string
	Err      error
	Duration time.Duration
	// NextStep is the wizard step to move to after a success.
	NextStep string
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Submitter posts one field at a time.
type Submitter struct {
	backend  Poster
	endpoint string
	duration time.Duration
}

// NewSubmitter returns a submitter posting to the current save endpoint, or
// the legacy one when legacy is set.
func NewSubmitter(backend Poster, legacy bool) *Submitter {
	endpoint := SaveEndpoint
	if legacy {
		endpoint = LegacySaveEndpoint
	}
	return &Submitter{backend: backend, endpoint: endpoint, duration: DefaultNoticeDuration}
}

// Endpoint returns the save endpoint in use.
func (s *Submitter) Endpoint() string {
	return s.endpoint
}

// SetNoticeDuration changes how long result notifications stay visible. The
// value is clamped to MaxNoticeDuration; zero restores the default.
func (s *Submitter) SetNoticeDuration(d time.Duration) {
	switch {
	case d <= 0:
		d = DefaultNoticeDuration
	case d > MaxNoticeDuration:
		d = MaxNoticeDuration
	}
	s.duration = d
}

// Submit posts {field: value} to the save endpoint.
func (s *Submitter) Submit(ctx context.Context, field string, value interface{}) Result {
	return s.submit(ctx, field, value, fmt.Sprintf("Updated %s successfully", field), "")
}

// SubmitRaw parses raw against setting and submits the result. Validation
// failures are reported without contacting the backend.
func (s *Submitter) SubmitRaw(ctx context.Context, setting Setting, raw string) Result {
	value, err := Parse(setting, raw)
	if err != nil {
		events.Settings.Result(setting.Name, err)
		return s.failure(err.Error(), err)
	}
	return s.Submit(ctx, setting.Name, value)
}

func (s *Submitter) submit(ctx context.Context, field string, value interface{}, success, next string) Result {
	events.Settings.Submit(s.endpoint, field, value)
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	err := s.backend.JSON(ctx, http.MethodPost, s.endpoint, map[string]interface{}{field: value}, &body)
	if err != nil && !errors.Is(err, io.EOF) {
		events.Settings.Result(field, err)
		return s.failure(failureMessage(err), err)
	}
	if body.Status == "error" {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		if msg == "" {
			msg = FallbackMessage
		}
		err := errors.New(msg)
		events.Settings.Result(field, err)
		return s.failure(fmt.Sprintf("Failed to update %s: %s", field, msg), err)
	}
	events.Settings.Result(field, nil)
	return Result{Message: success, Duration: s.duration, NextStep: next}
}

func (s *Submitter) failure(msg string, err error) Result {
	return Result{Message: msg, Err: err, Duration: s.duration}
}

// failureMessage picks the user-facing text for a failed call.
func failureMessage(err error) string {
	var formErr *api.FormError
	if errors.As(err, &formErr) && formErr.Message != "" {
		return formErr.Message
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return FallbackMessage
}

// Catalog fetches the settings catalog.
func Catalog(ctx context.Context, backend Poster) ([]Setting, error) {
	var body struct {
		Data  []Setting `json:"data"`
		Error string    `json:"error"`
	}
	if err := backend.JSON(ctx, http.MethodGet, CatalogEndpoint, nil, &body); err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("failed to load settings: %s", body.Error)
	}
	return body.Data, nil
}
