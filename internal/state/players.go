package state

import "github.com/steamserverui/ssui-console/internal/api"

type PlayerStore interface {
	Entries() []api.Player
	SetEntries([]api.Player)
	Err() error
	SetErr(error)
}

type playerStore struct {
	entries []api.Player
	err     error
}

func NewPlayerStore() PlayerStore {
	return &playerStore{}
}

func (s *playerStore) Entries() []api.Player {
	return clonePlayers(s.entries)
}

func (s *playerStore) SetEntries(entries []api.Player) {
	s.entries = clonePlayers(entries)
	s.err = nil
}

func (s *playerStore) Err() error {
	return s.err
}

func (s *playerStore) SetErr(err error) {
	s.err = err
}

func clonePlayers(entries []api.Player) []api.Player {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]api.Player, len(entries))
	copy(dup, entries)
	return dup
}
