package persist_test

import (
	"testing"

	"github.com/atlas-desktop/trading-backend/internal/persist"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

func TestMemoryRepositoryInsertAndFindByName(t *testing.T) {
	repo := persist.NewMemoryRepository()

	result := types.BacktestResult{StrategyName: "golden-cross"}
	id, err := repo.Insert(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty ID")
	}

	found, ok := repo.FindByName("golden-cross")
	if !ok {
		t.Fatal("expected to find result by name")
	}
	if found.StrategyName != "golden-cross" {
		t.Errorf("expected strategy name 'golden-cross', got %q", found.StrategyName)
	}
}

func TestMemoryRepositoryFindByNameMissing(t *testing.T) {
	repo := persist.NewMemoryRepository()
	if _, ok := repo.FindByName("nonexistent"); ok {
		t.Error("expected ok=false for a missing strategy name")
	}
}

func TestMemoryRepositoryFindByID(t *testing.T) {
	repo := persist.NewMemoryRepository()

	id, err := repo.Insert(types.BacktestResult{StrategyName: "rsi-reversion"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, ok := repo.FindByID(id)
	if !ok {
		t.Fatal("expected to find result by ID")
	}
	if found.StrategyName != "rsi-reversion" {
		t.Errorf("expected strategy name 'rsi-reversion', got %q", found.StrategyName)
	}

	if _, ok := repo.FindByID("not-a-real-id"); ok {
		t.Error("expected ok=false for an unknown ID")
	}
}

func TestMemoryRepositoryInsertOverwritesByName(t *testing.T) {
	repo := persist.NewMemoryRepository()

	if _, err := repo.Insert(types.BacktestResult{StrategyName: "dup", Metrics: types.BacktestMetrics{TotalTrades: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Insert(types.BacktestResult{StrategyName: "dup", Metrics: types.BacktestMetrics{TotalTrades: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, ok := repo.FindByName("dup")
	if !ok {
		t.Fatal("expected to find result by name")
	}
	if found.Metrics.TotalTrades != 2 {
		t.Errorf("expected the most recent insert (TotalTrades=2) to win, got %d", found.Metrics.TotalTrades)
	}
}
