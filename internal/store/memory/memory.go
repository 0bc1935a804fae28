package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

type entry struct {
	seq     int64
	expense core.Expense
}

// Store keeps expenses in a map keyed by ID. A sequence number assigned on Add
// preserves insertion order for List.
type Store struct {
	mu        sync.RWMutex
	items     map[string]entry
	nextSeq   int64
	viewState *core.ViewState
}

func New() *Store {
	return &Store{items: map[string]entry{}}
}

// NewFromFile seeds the store from a JSON array of expense records. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []store.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	for _, r := range records {
		if err := s.Add(context.Background(), r.Expense()); err != nil {
			return nil, fmt.Errorf("seed expense %s: %w", r.ID, err)
		}
	}
	return s, nil
}

func (s *Store) Add(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.ID]; ok {
		return fmt.Errorf("%w: %s", store.ErrDuplicateID, e.ID)
	}
	s.nextSeq++
	s.items[e.ID] = entry{seq: s.nextSeq, expense: e}
	return nil
}

func (s *Store) Update(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[e.ID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, e.ID)
	}
	cur.expense = e
	s.items[e.ID] = cur
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.items[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return cur.expense, nil
}

func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	entries := make([]entry, 0, len(s.items))
	for _, e := range s.items {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]core.Expense, len(entries))
	for i, e := range entries {
		out[i] = e.expense
	}
	return out, nil
}

func (s *Store) ViewState(_ context.Context) (core.ViewState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.viewState == nil {
		return core.ViewState{}, false, nil
	}
	return *s.viewState, true, nil
}

func (s *Store) SaveViewState(_ context.Context, v core.ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewState = &v
	return nil
}

func (s *Store) Close() error {
	return nil
}

var _ store.ExpenseStore = (*Store)(nil)
