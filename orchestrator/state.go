package orchestrator

import (
	"sync/atomic"
	"time"

	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/logging"
)

// stateStore holds the published search state behind atomic values so readers
// never take the orchestrator lock.
type stateStore struct {
	current   atomic.Value // interfaces.SearchState
	updatedAt atomic.Value // time.Time
}

func newStateStore() *stateStore {
	s := &stateStore{}
	s.current.Store(idleState())
	s.updatedAt.Store(time.Time{})
	return s
}

// load returns the current snapshot. Callers must not modify it.
func (s *stateStore) load() interfaces.SearchState {
	if v := s.current.Load(); v != nil {
		if state, ok := v.(interfaces.SearchState); ok {
			return state
		}
	}

	logging.Warn("Search state is empty or invalid")
	return idleState()
}

func (s *stateStore) store(state interfaces.SearchState) {
	s.current.Store(state)
	s.updatedAt.Store(time.Now())
}

func (s *stateStore) lastUpdated() time.Time {
	if v := s.updatedAt.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

func idleState() interfaces.SearchState {
	return interfaces.SearchState{
		Phase:   interfaces.PhaseIdle,
		Results: []entities.Medicine{},
	}
}

// cloneState deep-copies the results so callers can keep a snapshot around.
func cloneState(state interfaces.SearchState) interfaces.SearchState {
	state.Results = entities.CloneMedicines(state.Results)
	if state.Results == nil {
		state.Results = []entities.Medicine{}
	}
	return state
}
