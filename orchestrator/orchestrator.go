// Package orchestrator owns the current search. It turns typed queries and
// OCR text into lookups, publishes Idle/Loading/Success/Empty/Failed state
// to subscribers and feeds successful results into the search history.
//
// Every submission takes a new generation. A lookup that finishes after a
// newer submission, a debounced keystroke or ClearResults is dropped without
// touching the published state or the history.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/extractor"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/logging"
	"github.com/tjswar/medilookapp/metrics"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// NoCandidatesMessage is shown to the user when OCR text yields no names.
const NoCandidatesMessage = "No medicine names found in the prescription"

// ErrNoCandidates is returned when OCR text yields no medicine names.
var ErrNoCandidates = errors.New("no medicine names found in the prescription")

// Compile-time check to ensure Orchestrator implements SearchCoordinator
var _ interfaces.SearchCoordinator = (*Orchestrator)(nil)

// Orchestrator serializes all state changes behind one mutex. Published
// snapshots are read lock-free.
type Orchestrator struct {
	lookup   interfaces.DrugLookup
	history  interfaces.HistoryCache
	debounce time.Duration

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer

	subMu       sync.Mutex
	subscribers map[uint64]func(interfaces.SearchState)
	nextSubID   uint64

	// notifyMu is taken before mu is released so subscribers see transitions
	// in the order they were published.
	notifyMu sync.Mutex

	state *stateStore

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates an orchestrator. history may be nil. A debounce below zero uses
// DefaultDebounce.
func New(lookup interfaces.DrugLookup, history interfaces.HistoryCache, debounce time.Duration) *Orchestrator {
	if debounce < 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		lookup:      lookup,
		history:     history,
		debounce:    debounce,
		subscribers: make(map[uint64]func(interfaces.SearchState)),
		state:       newStateStore(),
		baseCtx:     ctx,
		cancel:      cancel,
	}
}

// Submit runs one search synchronously and returns the state it ended in. An
// empty query clears the results and returns to Idle without a lookup. When a
// newer submission overtakes this one, the caller still gets the outcome of
// its own lookup, marked Superseded and left unpublished.
func (o *Orchestrator) Submit(ctx context.Context, query string) interfaces.SearchState {
	query = strings.TrimSpace(query)

	o.mu.Lock()
	gen := o.advance()
	if query == "" {
		o.publish(idleState())
		return idleState()
	}
	o.publish(loadingState(o.state.load(), query))

	return o.run(ctx, gen, query)
}

// SubmitDebounced schedules a search after the debounce period. Each call
// cancels the pending one. An empty query clears the results immediately.
func (o *Orchestrator) SubmitDebounced(query string) {
	query = strings.TrimSpace(query)

	o.mu.Lock()
	gen := o.advance()
	if query == "" {
		o.publish(idleState())
		return
	}

	o.timer = time.AfterFunc(o.debounce, func() {
		o.mu.Lock()
		if o.generation != gen {
			o.mu.Unlock()
			return
		}
		o.timer = nil
		o.publish(loadingState(o.state.load(), query))

		o.run(o.baseCtx, gen, query)
	})
	o.mu.Unlock()
}

// SearchCandidates looks up each candidate name in turn and publishes the
// combined results. Each candidate with results is recorded in the history
// on its own.
func (o *Orchestrator) SearchCandidates(ctx context.Context, candidates []string) interfaces.SearchState {
	names := extractor.FilterCandidates(candidates)
	label := strings.Join(names, ", ")

	o.mu.Lock()
	gen := o.advance()
	if len(names) == 0 {
		o.publish(idleState())
		return idleState()
	}
	o.publish(loadingState(o.state.load(), label))

	var combined []entities.Medicine
	var lastErr error
	for _, name := range names {
		if !o.current(gen) {
			logging.Debug("Candidate batch superseded", "candidates", label)
			break
		}

		results, err := o.lookup.Search(ctx, name)
		if err != nil {
			logging.Warn("Candidate lookup failed", "candidate", name, "error", err)
			lastErr = err
			continue
		}
		if len(results) > 0 && o.current(gen) && o.history != nil {
			o.history.Record(name, results)
		}
		combined = append(combined, results...)
	}

	if len(combined) > 0 {
		lastErr = nil
	}
	return o.commit(gen, label, combined, lastErr, false)
}

// SearchRecognizedText extracts candidate names from OCR strings and searches
// them. It returns ErrNoCandidates, leaving the state untouched, when nothing
// looks like a medicine name.
func (o *Orchestrator) SearchRecognizedText(ctx context.Context, recognized []string) ([]string, interfaces.SearchState, error) {
	text := extractor.JoinRecognizedText(recognized)
	candidates := extractor.FilterCandidates(extractor.ExtractMedicineNames(text))
	if len(candidates) == 0 {
		logging.Info("No medicine names found in recognized text", "regions", len(recognized))
		return nil, o.State(), ErrNoCandidates
	}

	logging.Info("Extracted medicine names", "candidates", candidates)
	return candidates, o.SearchCandidates(ctx, candidates), nil
}

// ClearResults cancels any pending or in-flight search and returns to Idle.
func (o *Orchestrator) ClearResults() {
	o.mu.Lock()
	o.advance()
	o.publish(idleState())
}

// State returns a copy of the current state.
func (o *Orchestrator) State() interfaces.SearchState {
	return cloneState(o.state.load())
}

// LastUpdated returns when the state last changed.
func (o *Orchestrator) LastUpdated() time.Time {
	return o.state.lastUpdated()
}

// Subscribe registers fn for every state change. Callbacks run synchronously
// on the goroutine that changed the state and must not call back into
// Submit, SubmitDebounced, SearchCandidates or ClearResults.
func (o *Orchestrator) Subscribe(fn func(interfaces.SearchState)) (unsubscribe func()) {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.subMu.Lock()
			delete(o.subscribers, id)
			o.subMu.Unlock()
		})
	}
}

// Close cancels pending and in-flight debounced searches.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.advance()
	o.mu.Unlock()
	o.cancel()
}

// run performs the lookup for gen and commits its outcome.
func (o *Orchestrator) run(ctx context.Context, gen uint64, query string) interfaces.SearchState {
	start := time.Now()
	results, err := o.lookup.Search(ctx, query)
	logging.Debug("Lookup finished", "query", query, "results", len(results), "duration", time.Since(start))

	return o.commit(gen, query, results, err, true)
}

// commit publishes the terminal state for gen. When a newer generation has
// started, the state is returned to the caller marked Superseded without
// being published or recorded.
func (o *Orchestrator) commit(gen uint64, query string, results []entities.Medicine, err error, record bool) interfaces.SearchState {
	next := terminalState(query, results, err)

	o.mu.Lock()
	if o.generation != gen {
		o.mu.Unlock()
		logging.Debug("Dropping superseded search result", "query", query, "phase", next.Phase)
		next.Superseded = true
		return next
	}

	if next.Phase == interfaces.PhaseSuccess && record && o.history != nil {
		o.history.Record(query, results)
	}

	metrics.SearchOutcomeTotal.WithLabelValues(string(next.Phase)).Inc()
	logging.Info("Search finished", "query", query, "phase", next.Phase, "results", len(next.Results))

	o.publish(next)
	return cloneState(next)
}

// terminalState maps a lookup outcome to Success, Empty or Failed.
func terminalState(query string, results []entities.Medicine, err error) interfaces.SearchState {
	switch {
	case err != nil:
		return interfaces.SearchState{
			Phase:   interfaces.PhaseFailed,
			Query:   query,
			Results: []entities.Medicine{},
			Error:   fmt.Sprintf("Error searching for medication: %v", err),
		}
	case len(results) == 0:
		return interfaces.SearchState{
			Phase:   interfaces.PhaseEmpty,
			Query:   query,
			Results: []entities.Medicine{},
			Error:   fmt.Sprintf("No results found for '%s'", query),
		}
	default:
		return interfaces.SearchState{
			Phase:   interfaces.PhaseSuccess,
			Query:   query,
			Results: entities.CloneMedicines(results),
		}
	}
}

// advance starts a new generation and stops the pending debounce timer. It
// must be called with o.mu held.
func (o *Orchestrator) advance() uint64 {
	o.generation++
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	return o.generation
}

func (o *Orchestrator) current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation == gen
}

// publish stores state and notifies subscribers. It must be called with o.mu
// held and always releases it.
func (o *Orchestrator) publish(state interfaces.SearchState) {
	o.state.store(state)

	o.subMu.Lock()
	subs := make([]func(interfaces.SearchState), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.subMu.Unlock()

	o.notifyMu.Lock()
	o.mu.Unlock()
	defer o.notifyMu.Unlock()

	for _, fn := range subs {
		fn(cloneState(state))
	}
}

func loadingState(previous interfaces.SearchState, query string) interfaces.SearchState {
	return interfaces.SearchState{
		Phase:     interfaces.PhaseLoading,
		Query:     query,
		Results:   previous.Results,
		IsLoading: true,
	}
}
