// Package memory provides in-memory store adapters, selected by
// PERSISTENCE=memory and used as test infrastructure.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/domain/store"
)

// EntryStore is an in-memory knowledge.EntryStore.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[string]knowledge.Entry
}

// NewEntryStore creates an empty EntryStore.
func NewEntryStore() *EntryStore {
	return &EntryStore{entries: make(map[string]knowledge.Entry)}
}

// Save upserts the entry by id.
func (s *EntryStore) Save(_ context.Context, entry knowledge.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID()] = entry
	return nil
}

// Get returns the entry by id.
func (s *EntryStore) Get(_ context.Context, id string) (knowledge.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return knowledge.Entry{}, fmt.Errorf("%w: %s", knowledge.ErrEntryNotFound, id)
	}
	return entry, nil
}

// Find returns entries matching the query conditions, ordered by id.
func (s *EntryStore) Find(_ context.Context, options ...store.Option) ([]knowledge.Entry, error) {
	q := store.Build(options...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []knowledge.Entry
	for _, id := range ids {
		entry := s.entries[id]
		if matchEntry(entry, q) {
			out = append(out, entry)
		}
	}
	return paginate(out, q), nil
}

func matchEntry(entry knowledge.Entry, q store.Query) bool {
	for _, cond := range q.Conditions() {
		switch cond.Field() {
		case "id":
			if !condMatches(cond, entry.ID()) {
				return false
			}
		case "source_id":
			if !condMatches(cond, entry.Source().ID()) {
				return false
			}
		}
	}
	return true
}

func condMatches(cond store.Condition, value string) bool {
	if cond.In() {
		values, ok := cond.Value().([]string)
		if !ok {
			return false
		}
		for _, v := range values {
			if v == value {
				return true
			}
		}
		return false
	}
	v, ok := cond.Value().(string)
	return ok && v == value
}

func paginate[T any](items []T, q store.Query) []T {
	offset := q.OffsetValue()
	if offset > len(items) {
		return nil
	}
	items = items[offset:]
	if limit := q.LimitValue(); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// RunStore is an in-memory knowledge.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]knowledge.IngestionRun
}

// NewRunStore creates an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]knowledge.IngestionRun)}
}

// Save stores a completed run. Completed runs are immutable; saving an
// existing run id again is a no-op.
func (s *RunStore) Save(_ context.Context, run knowledge.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.RunID()]; exists {
		return nil
	}
	s.runs[run.RunID()] = run
	return nil
}

// Get returns the run by id.
func (s *RunStore) Get(_ context.Context, runID string) (knowledge.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return knowledge.IngestionRun{}, fmt.Errorf("%w: %s", knowledge.ErrRunNotFound, runID)
	}
	return run, nil
}
