package interfaces

import "github.com/tjswar/medilookapp/entities"

// SearchPhase is the lifecycle position of the current search.
type SearchPhase string

const (
	PhaseIdle    SearchPhase = "idle"
	PhaseLoading SearchPhase = "loading"
	PhaseSuccess SearchPhase = "success"
	PhaseEmpty   SearchPhase = "empty"
	PhaseFailed  SearchPhase = "failed"
)

// SearchState is an immutable snapshot of the UI-facing search state.
// Superseded marks an outcome handed back to its own caller after a newer
// search took over; such a state is never published.
type SearchState struct {
	Phase      SearchPhase         `json:"phase"`
	Query      string              `json:"query"`
	Results    []entities.Medicine `json:"results"`
	IsLoading  bool                `json:"isLoading"`
	Error      string              `json:"error,omitempty"`
	Superseded bool                `json:"superseded,omitempty"`
}
