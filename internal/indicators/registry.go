package indicators

import (
	"sync"

	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// ComputeFunc produces an indicator's output column from the OHLCV table
// and the indicator's concrete parameters.
type ComputeFunc func(table *types.OHLCVTable, params []float64) ([]float64, error)

type entry struct {
	metadata types.IndicatorMetadata
	compute  ComputeFunc
}

// Registry is the process-wide, write-once/read-many catalog of indicator
// metadata and compute functions, keyed by name. Mirrors the reference
// backend's StrategyRegistry (sync.RWMutex + map[string]factory,
// Register/Create/List) generalized from strategy factories to indicator
// metadata+compute pairs.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty registry. Call RegisterBuiltins to populate
// it with the fourteen required kernels before any backtest runs.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds or replaces an indicator's metadata and compute function.
func (r *Registry) Register(meta types.IndicatorMetadata, fn ComputeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[meta.Name] = entry{metadata: meta, compute: fn}
}

// Get returns an indicator's metadata, or false if unknown.
func (r *Registry) Get(name string) (types.IndicatorMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.metadata, ok
}

// Compute runs an indicator's compute function, or returns false if the
// name is unknown.
func (r *Registry) Compute(name string, table *types.OHLCVTable, params []float64) ([]float64, bool, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out, err := e.compute(table, params)
	return out, true, err
}

// AllNames returns every registered indicator name.
func (r *Registry) AllNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// ByCategory returns the names of every indicator in a category.
func (r *Registry) ByCategory(cat types.IndicatorCategory) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, e := range r.entries {
		if e.metadata.Category == cat {
			names = append(names, name)
		}
	}
	return names
}

// Stats reports the number of registered indicators per category.
func (r *Registry) Stats() map[types.IndicatorCategory]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := make(map[types.IndicatorCategory]int)
	for _, e := range r.entries {
		stats[e.metadata.Category]++
	}
	return stats
}
