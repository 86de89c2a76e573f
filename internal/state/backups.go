package state

import "github.com/steamserverui/ssui-console/internal/api"

type BackupStore interface {
	Entries() []api.Backup
	SetEntries([]api.Backup)
	Find(index int) (api.Backup, bool)
	Err() error
	SetErr(error)
}

type backupStore struct {
	entries []api.Backup
	err     error
}

func NewBackupStore() BackupStore {
	return &backupStore{}
}

func (s *backupStore) Entries() []api.Backup {
	return cloneBackups(s.entries)
}

func (s *backupStore) SetEntries(entries []api.Backup) {
	s.entries = cloneBackups(entries)
	s.err = nil
}

func (s *backupStore) Find(index int) (api.Backup, bool) {
	for _, b := range s.entries {
		if b.Index == index {
			return b, true
		}
	}
	return api.Backup{}, false
}

func (s *backupStore) Err() error {
	return s.err
}

func (s *backupStore) SetErr(err error) {
	s.err = err
}

func cloneBackups(entries []api.Backup) []api.Backup {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]api.Backup, len(entries))
	copy(dup, entries)
	return dup
}
