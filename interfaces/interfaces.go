// Package interfaces defines core abstractions for the medicine lookup service
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/tjswar/medilookapp/entities"
)

// DrugLookup resolves a free-text medicine name into label-backed records.
// Implementations may choose to never fail and return a placeholder record
// instead.
type DrugLookup interface {
	Search(ctx context.Context, query string) ([]entities.Medicine, error)
}

// UpstreamProber checks that the remote label database is reachable.
type UpstreamProber interface {
	Probe(ctx context.Context) error
}

// ProbeStatus reports the outcome of the scheduled upstream probes.
type ProbeStatus interface {
	StartedAt() time.Time
	LastProbe() time.Time
	LastSuccess() time.Time
	LastError() error
	Interval() time.Duration
}

// BlobStore persists a single named blob. Load returns os.ErrNotExist (wrapped)
// when nothing has been saved yet.
type BlobStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Delete() error
}

// HistoryCache is the bounded, most-recent-first list of past searches.
type HistoryCache interface {
	Record(query string, results []entities.Medicine)
	Clear()
	Entries() []entities.SearchHistoryEntry
	Len() int
}

// SearchCoordinator owns the current search state and turns queries and OCR
// text into lookups.
type SearchCoordinator interface {
	Submit(ctx context.Context, query string) SearchState
	SubmitDebounced(query string)
	SearchCandidates(ctx context.Context, candidates []string) SearchState
	SearchRecognizedText(ctx context.Context, recognized []string) (candidates []string, state SearchState, err error)
	ClearResults()
	State() SearchState
	Subscribe(fn func(SearchState)) (unsubscribe func())
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status label, details and HTTP status code
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// QueryValidator validates user-supplied search text.
type QueryValidator interface {
	ValidateQuery(query string) error
	ValidateRecognizedText(lines []string) error
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	Search(w http.ResponseWriter, r *http.Request)
	SearchOCR(w http.ResponseWriter, r *http.Request)
	CurrentState(w http.ResponseWriter, r *http.Request)
	ListHistory(w http.ResponseWriter, r *http.Request)
	ClearHistory(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
