// Package persist defines the opaque repository interface spec.md §6
// calls for — Insert and FindByName (the content-addressable AST hash for
// deduplication lives in internal/ast) — and a single in-memory implementation suitable for
// the results API and tests. Per spec.md §1 and SPEC_FULL.md §3, a
// SQLite-backed implementation is explicitly out of scope; only the
// interface and a memory-backed stand-in live here.
package persist

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// Repository is the persistence boundary the core treats as an external
// collaborator. Insert assigns and returns a stable ID; FindByName looks
// up the most recently inserted result for a strategy name.
type Repository interface {
	Insert(result types.BacktestResult) (string, error)
	FindByName(name string) (*types.BacktestResult, bool)
}

// record pairs a stored result with the ID it was assigned.
type record struct {
	id     string
	result types.BacktestResult
}

// MemoryRepository is a process-local, goroutine-safe Repository backed
// by a map keyed on strategy name plus an ID index, adequate for the API
// layer and for tests that need a Repository without a database.
type MemoryRepository struct {
	mu      sync.RWMutex
	byName  map[string]record
	byID    map[string]record
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName: make(map[string]record),
		byID:   make(map[string]record),
	}
}

// Insert stores result, overwriting any prior result for the same
// strategy name, and returns a freshly minted UUID.
func (m *MemoryRepository) Insert(result types.BacktestResult) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := record{id: id, result: result}
	m.byName[result.StrategyName] = rec
	m.byID[id] = rec
	return id, nil
}

// FindByName returns the most recently inserted result for name, if any.
func (m *MemoryRepository) FindByName(name string) (*types.BacktestResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	r := rec.result
	return &r, true
}

// FindByID returns the result stored under id, if any.
func (m *MemoryRepository) FindByID(id string) (*types.BacktestResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	r := rec.result
	return &r, true
}

// ErrNotFound is returned by callers that want a sentinel for "no such run".
var ErrNotFound = fmt.Errorf("persist: not found")
