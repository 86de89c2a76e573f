package command

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/steamserverui/ssui-console/internal/logging/events"
)

// Handler performs one dashboard action against the backend and reports the
// outcome as a message for Model.Update.
type Handler func(ctx context.Context) tea.Msg

// Request encapsulates an action invocation.
type Request struct {
	ID      string
	Label   string
	Handler Handler
}

// Bus coordinates the execution of dashboard actions.
type Bus struct {
	timeout time.Duration
}

// New initialises a command bus. Each action gets timeout to finish; zero
// means no deadline.
func New(timeout time.Duration) *Bus {
	return &Bus{timeout: timeout}
}

// Execute wraps an action into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Handler == nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		ctx := context.Background()
		if b != nil && b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		msg := req.Handler(ctx)
		if msg == nil {
			events.Command.NoOp(req.ID, req.Label)
			return nil
		}
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}
