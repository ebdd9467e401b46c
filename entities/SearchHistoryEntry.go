package entities

import (
	"time"

	"github.com/google/uuid"
)

// SearchHistoryEntry is one past query with a snapshot of what it returned.
type SearchHistoryEntry struct {
	ID        string     `json:"id"`
	Query     string     `json:"query"`
	Timestamp time.Time  `json:"timestamp"`
	Results   []Medicine `json:"results"`
}

// NewSearchHistoryEntry copies results so the entry never shares slices with
// the live result list.
func NewSearchHistoryEntry(query string, results []Medicine, at time.Time) SearchHistoryEntry {
	return SearchHistoryEntry{
		ID:        uuid.NewString(),
		Query:     query,
		Timestamp: at,
		Results:   CloneMedicines(results),
	}
}

// Clone returns a deep copy of the entry.
func (e SearchHistoryEntry) Clone() SearchHistoryEntry {
	c := e
	c.Results = CloneMedicines(e.Results)
	return c
}
