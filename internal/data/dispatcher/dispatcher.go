package dispatcher

import (
	"github.com/steamserverui/ssui-console/internal/api"
	"github.com/steamserverui/ssui-console/internal/backend"
	"github.com/steamserverui/ssui-console/internal/state"
)

type Result struct {
	StatusUpdated  bool
	PlayersUpdated bool
	BackupsUpdated bool
	// AuthRequired is set when a poll was rejected with 401.
	AuthRequired bool
}

type Dispatcher struct {
	status  state.StatusStore
	players state.PlayerStore
	backups state.BackupStore
}

func New(s state.StatusStore, p state.PlayerStore, b state.BackupStore) *Dispatcher {
	return &Dispatcher{status: s, players: p, backups: b}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		res.AuthRequired = api.IsAuthRequired(evt.Err)
		switch evt.Kind {
		case backend.KindStatus:
			d.status.SetErr(evt.Err)
			res.StatusUpdated = true
		case backend.KindPlayers:
			d.players.SetErr(evt.Err)
		case backend.KindBackups:
			d.backups.SetErr(evt.Err)
		}
		return res
	}
	switch evt.Kind {
	case backend.KindStatus:
		if status, ok := evt.Data.(api.ServerStatus); ok {
			d.status.SetStatus(status)
			res.StatusUpdated = true
		}
	case backend.KindPlayers:
		if players, ok := evt.Data.([]api.Player); ok {
			d.players.SetEntries(players)
			res.PlayersUpdated = true
		}
	case backend.KindBackups:
		if backups, ok := evt.Data.([]api.Backup); ok {
			d.backups.SetEntries(backups)
			res.BackupsUpdated = true
		}
	}
	return res
}
