package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/metrics"
)

// memoryStore is an in-memory BlobStore that can be told to fail.
type memoryStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	deletes int
	loadErr error
	saveErr error
}

func (m *memoryStore) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, fmt.Errorf("memory store: %w", os.ErrNotExist)
	}
	return m.data, nil
}

func (m *memoryStore) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.data = nil
	return nil
}

func medicine(name string) entities.Medicine {
	return entities.NewMedicine(entities.MedicineFields{Name: name})
}

func TestRecordMostRecentFirst(t *testing.T) {
	c := NewCache(&memoryStore{}, 20)

	c.Record("advil", []entities.Medicine{medicine("Advil")})
	c.Record("tylenol", []entities.Medicine{medicine("Tylenol")})

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Query != "tylenol" || entries[1].Query != "advil" {
		t.Errorf("Expected [tylenol advil], got [%s %s]", entries[0].Query, entries[1].Query)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Error("Expected distinct entry IDs")
	}
}

func TestRecordDeduplicatesIgnoringCase(t *testing.T) {
	c := NewCache(&memoryStore{}, 20)

	c.Record("Advil", []entities.Medicine{medicine("Old")})
	c.Record("tylenol", nil)
	c.Record("ADVIL", []entities.Medicine{medicine("New")})

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Query != "ADVIL" {
		t.Errorf("Expected newest query at the front, got %q", entries[0].Query)
	}
	if len(entries[0].Results) != 1 || entries[0].Results[0].Name != "New" {
		t.Errorf("Expected newest results, got %+v", entries[0].Results)
	}
}

func TestRecordNeverExceedsCapacity(t *testing.T) {
	c := NewCache(&memoryStore{}, DefaultCapacity)

	for i := range 35 {
		c.Record(fmt.Sprintf("query-%d", i), nil)
		if c.Len() > DefaultCapacity {
			t.Fatalf("Expected at most %d entries, got %d", DefaultCapacity, c.Len())
		}
	}

	entries := c.Entries()
	if entries[0].Query != "query-34" {
		t.Errorf("Expected query-34 first, got %s", entries[0].Query)
	}
	if entries[len(entries)-1].Query != "query-15" {
		t.Errorf("Expected query-15 last, got %s", entries[len(entries)-1].Query)
	}
}

func TestRecordCopiesResults(t *testing.T) {
	c := NewCache(&memoryStore{}, 20)

	results := []entities.Medicine{medicine("Advil")}
	results[0].Alternatives = []string{"Motrin"}
	c.Record("advil", results)

	results[0].Alternatives[0] = "changed"
	entries := c.Entries()
	if entries[0].Results[0].Alternatives[0] != "Motrin" {
		t.Error("Expected the entry to own its results")
	}

	entries[0].Results[0].Alternatives[0] = "changed again"
	if c.Entries()[0].Results[0].Alternatives[0] != "Motrin" {
		t.Error("Expected Entries to return copies")
	}
}

func TestPersistAndReload(t *testing.T) {
	store := &memoryStore{}
	c := NewCache(store, 20)
	c.Record("advil", []entities.Medicine{medicine("Advil")})
	c.Record("tylenol", nil)

	if store.saves != 2 {
		t.Errorf("Expected a save per record, got %d", store.saves)
	}

	reloaded := NewCache(store, 20)
	entries := reloaded.Entries()
	if len(entries) != 2 || entries[0].Query != "tylenol" {
		t.Fatalf("Expected reloaded history, got %+v", entries)
	}
	if entries[1].Results[0].Name != "Advil" {
		t.Errorf("Expected results to survive reload, got %+v", entries[1].Results)
	}
}

func TestLoadFailuresStartEmpty(t *testing.T) {
	tests := []struct {
		name  string
		store *memoryStore
	}{
		{"missing", &memoryStore{}},
		{"read error", &memoryStore{loadErr: errors.New("disk gone")}},
		{"corrupt", &memoryStore{data: []byte("{not json")}},
		{"wrong shape", &memoryStore{data: []byte(`{"query":"x"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(tt.store, 20)
			if c.Len() != 0 {
				t.Errorf("Expected empty cache, got %d entries", c.Len())
			}
		})
	}
}

func TestLoadReappliesInvariants(t *testing.T) {
	now := time.Now()
	persisted := []entities.SearchHistoryEntry{
		{ID: "1", Query: "advil", Timestamp: now},
		{ID: "2", Query: "ADVIL", Timestamp: now},
		{ID: "3", Query: "  ", Timestamp: now},
		{ID: "4", Query: "tylenol", Timestamp: now},
		{ID: "5", Query: "aspirin", Timestamp: now},
	}
	data, err := json.Marshal(persisted)
	if err != nil {
		t.Fatal(err)
	}

	c := NewCache(&memoryStore{data: data}, 2)
	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "1" || entries[1].ID != "4" {
		t.Errorf("Expected entries 1 and 4, got %s and %s", entries[0].ID, entries[1].ID)
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("read-only")}
	c := NewCache(store, 20)

	c.Record("advil", nil)

	if c.Len() != 1 {
		t.Errorf("Expected record to apply in memory, got %d entries", c.Len())
	}
}

func TestClear(t *testing.T) {
	store := &memoryStore{}
	c := NewCache(store, 20)
	c.Record("advil", nil)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
	if store.deletes != 1 {
		t.Errorf("Expected persisted blob to be deleted, got %d deletes", store.deletes)
	}
	if NewCache(store, 20).Len() != 0 {
		t.Error("Expected cleared state to survive reload")
	}
}

func TestHistoryGauge(t *testing.T) {
	c := NewCache(&memoryStore{}, 20)
	c.Record("a-query", nil)
	c.Record("b-query", nil)

	if got := testutil.ToFloat64(metrics.SearchHistoryEntries); got != 2 {
		t.Errorf("Expected gauge 2, got %v", got)
	}

	c.Clear()
	if got := testutil.ToFloat64(metrics.SearchHistoryEntries); got != 0 {
		t.Errorf("Expected gauge 0, got %v", got)
	}
}

func TestConcurrentRecords(t *testing.T) {
	c := NewCache(&memoryStore{}, 20)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record(fmt.Sprintf("q%d", i%10), nil)
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Expected 10 distinct queries, got %d", c.Len())
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	fs := NewFileStore(path)

	if _, err := fs.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}

	if err := fs.Save([]byte(`[]`)); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	if err := fs.Save([]byte(`[{"query":"advil"}]`)); err != nil {
		t.Fatalf("Expected overwrite to succeed, got %v", err)
	}

	data, err := fs.Load()
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if !strings.Contains(string(data), "advil") {
		t.Errorf("Expected latest blob, got %s", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("Expected no temporary files, got %v", leftovers)
	}

	if err := fs.Delete(); err != nil {
		t.Errorf("Expected delete to succeed, got %v", err)
	}
	if err := fs.Delete(); err != nil {
		t.Errorf("Expected deleting a missing blob to succeed, got %v", err)
	}
}

func TestCacheWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(NewFileStore(path), 20)
	if c.Len() != 0 {
		t.Fatalf("Expected corrupt file to give an empty cache, got %d", c.Len())
	}

	c.Record("advil", []entities.Medicine{medicine("Advil")})
	if NewCache(NewFileStore(path), 20).Len() != 1 {
		t.Error("Expected history written to disk")
	}
}
