package state

import "github.com/steamserverui/ssui-console/internal/api"

// Indicator is the server status light shown in the status bar.
type Indicator int

const (
	IndicatorUnknown Indicator = iota
	IndicatorOnline
	IndicatorOffline
	IndicatorError
)

func (i Indicator) String() string {
	switch i {
	case IndicatorOnline:
		return "online"
	case IndicatorOffline:
		return "offline"
	case IndicatorError:
		return "error"
	default:
		return "unknown"
	}
}

type StatusStore interface {
	Status() api.ServerStatus
	Indicator() Indicator
	Err() error
	SetStatus(api.ServerStatus)
	SetErr(error)
}

type statusStore struct {
	status    api.ServerStatus
	indicator Indicator
	err       error
}

func NewStatusStore() StatusStore {
	return &statusStore{}
}

func (s *statusStore) Status() api.ServerStatus {
	return s.status
}

func (s *statusStore) Indicator() Indicator {
	return s.indicator
}

func (s *statusStore) Err() error {
	return s.err
}

func (s *statusStore) SetStatus(status api.ServerStatus) {
	s.status = status
	s.err = nil
	if status.IsRunning {
		s.indicator = IndicatorOnline
	} else {
		s.indicator = IndicatorOffline
	}
}

// SetErr keeps the last good status but flips the indicator to error.
func (s *statusStore) SetErr(err error) {
	s.err = err
	s.indicator = IndicatorError
}
