// Package api exposes a small read-only HTTP/WebSocket surface over a
// batch run's ranked results: the "persisted JSON" of spec.md §6 made
// queryable, plus a progress stream and Prometheus metrics, per
// SPEC_FULL.md §2's domain stack.
//
// Grounded on the reference backend's internal/api (mux.Router +
// rs/cors wrapping, gorilla/websocket Hub in websocket.go), trimmed to
// the read-only results surface this engine needs: no order/position
// WebSocket message types, no live backtest-run lifecycle — a batch run
// is already complete by the time it is published here.
package api

import (
	"sync"

	"github.com/atlas-desktop/trading-backend/internal/batch"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// Summary mirrors spec.md §6's outbound JSON "summary" object.
type Summary struct {
	TotalBacktested int `json:"total_backtested"`
	PassedFilters   int `json:"passed_filters"`
	TopSelected     int `json:"top_selected"`
}

// TopEntry mirrors one element of spec.md §6's "top_strategies" array.
type TopEntry struct {
	Rank         int                   `json:"rank"`
	Score        float64               `json:"score"`
	StrategyName string                `json:"strategy_name"`
	Metrics      types.BacktestMetrics `json:"metrics"`
	TotalTrades  int                   `json:"total_trades"`
}

// ReportConfig mirrors spec.md §6's "config" object: the filters and
// weights that produced this run's ranking.
type ReportConfig struct {
	MinTrades    int        `json:"min_trades"`
	MinWinRate   *float64   `json:"min_win_rate,omitempty"`
	MinSharpe    *float64   `json:"min_sharpe,omitempty"`
	MinReturn    *float64   `json:"min_return,omitempty"`
	MaxDrawdown  *float64   `json:"max_drawdown,omitempty"`
	ScoreWeights [5]float64 `json:"score_weights"`
}

// RunReport is the complete JSON document spec.md §6 specifies as the
// batch orchestrator's final outbound artifact, addressable by RunID.
type RunReport struct {
	RunID         string       `json:"run_id"`
	Config        ReportConfig `json:"config"`
	Summary       Summary      `json:"summary"`
	TopStrategies []TopEntry   `json:"top_strategies"`
}

// BuildReport assembles a RunReport from a completed batch.Run call.
func BuildReport(runID string, filters batch.Filters, weights [5]float64, totalBacktested, passedFilters int, ranked []batch.Ranked) RunReport {
	top := make([]TopEntry, len(ranked))
	for i, r := range ranked {
		top[i] = TopEntry{
			Rank:         i + 1,
			Score:        r.Score,
			StrategyName: r.Result.StrategyName,
			Metrics:      r.Result.Metrics,
			TotalTrades:  r.Result.Metrics.TotalTrades,
		}
	}
	return RunReport{
		RunID: runID,
		Config: ReportConfig{
			MinTrades:    filters.MinTrades,
			MinWinRate:   filters.MinWinRate,
			MinSharpe:    filters.MinSharpe,
			MinReturn:    filters.MinReturn,
			MaxDrawdown:  filters.MaxDrawdown,
			ScoreWeights: weights,
		},
		Summary: Summary{
			TotalBacktested: totalBacktested,
			PassedFilters:   passedFilters,
			TopSelected:     len(ranked),
		},
		TopStrategies: top,
	}
}

// Store holds completed run reports and their progress hubs, keyed by
// run ID. Safe for concurrent use: the batch orchestrator's worker pool
// publishes progress from many goroutines while HTTP handlers read
// concurrently.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]RunReport
	hubs   map[string]*ProgressHub
	latest string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string]RunReport),
		hubs: make(map[string]*ProgressHub),
	}
}

// Put stores (or replaces) the report for runID and records it as the
// most recent run.
func (s *Store) Put(runID string, report RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = report
	s.latest = runID
}

// Get returns the report for runID, if any.
func (s *Store) Get(runID string) (RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	return r, ok
}

// Latest returns the ID of the most recently Put run, if any.
func (s *Store) Latest() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == "" {
		return "", false
	}
	return s.latest, true
}

// Hub returns (creating if necessary) the ProgressHub for runID, used
// both by the batch orchestrator's progress callback (publisher) and by
// WebSocket clients (subscribers) for that run.
func (s *Store) Hub(runID string) *ProgressHub {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[runID]
	if !ok {
		h = NewProgressHub()
		s.hubs[runID] = h
	}
	return h
}
