package dispatcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/state"
)

func newDispatcher() (*Dispatcher, state.StatusStore, state.PlayerStore, state.BackupStore) {
	s, p, b := state.NewStatusStore(), state.NewPlayerStore(), state.NewBackupStore()
	return New(s, p, b), s, p, b
}

func TestHandleStatus(t *testing.T) {
	d, status, _, _ := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindStatus, Data: api.ServerStatus{IsRunning: true}})
	if !res.StatusUpdated {
		t.Fatalf("expected status update")
	}
	if status.Indicator() != state.IndicatorOnline {
		t.Fatalf("expected online, got %s", status.Indicator())
	}
	d.Handle(backend.Event{Kind: backend.KindStatus, Data: api.ServerStatus{IsRunning: false}})
	if status.Indicator() != state.IndicatorOffline {
		t.Fatalf("expected offline, got %s", status.Indicator())
	}
}

func TestHandleStatusErrorKeepsLastStatus(t *testing.T) {
	d, status, _, _ := newDispatcher()
	d.Handle(backend.Event{Kind: backend.KindStatus, Data: api.ServerStatus{IsRunning: true, UUID: "u"}})
	res := d.Handle(backend.Event{Kind: backend.KindStatus, Err: errors.New("boom")})
	if !res.StatusUpdated || res.AuthRequired {
		t.Fatalf("unexpected result %#v", res)
	}
	if status.Indicator() != state.IndicatorError || status.Status().UUID != "u" {
		t.Fatalf("expected error indicator with last status kept")
	}
}

func TestHandleAuthRequired(t *testing.T) {
	d, _, players, _ := newDispatcher()
	res := d.Handle(backend.Event{Kind: backend.KindPlayers, Err: fmt.Errorf("poll: %w", api.ErrAuthRequired)})
	if !res.AuthRequired {
		t.Fatalf("expected auth required")
	}
	if players.Err() == nil {
		t.Fatalf("expected player error recorded")
	}
}

func TestHandleListsAreCopied(t *testing.T) {
	d, _, players, backups := newDispatcher()
	list := []api.Player{{ID: "1", Username: "Ann"}}
	d.Handle(backend.Event{Kind: backend.KindPlayers, Data: list})
	list[0].Username = "changed"
	if players.Entries()[0].Username != "Ann" {
		t.Fatalf("expected store to copy entries")
	}
	res := d.Handle(backend.Event{Kind: backend.KindBackups, Data: []api.Backup{{Index: 4}}})
	if !res.BackupsUpdated {
		t.Fatalf("expected backups update")
	}
	if _, ok := backups.Find(4); !ok {
		t.Fatalf("expected backup 4")
	}
}

func TestHandleIgnoresMismatchedData(t *testing.T) {
	d, _, _, _ := newDispatcher()
	if res := d.Handle(backend.Event{Kind: backend.KindBackups, Data: "nope"}); res.BackupsUpdated {
		t.Fatalf("expected mismatched payload ignored")
	}
}
