package types

import (
	"errors"
	"testing"

	"github.com/atlas-desktop/trading-backend/internal/errs"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := DefaultBacktestConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestValidateReturnsConfigError(t *testing.T) {
	cases := []struct {
		name string
		cfg  BacktestConfig
	}{
		{"non-positive balance", BacktestConfig{InitialBalance: 0, MaxPositions: 1, RiskPerTrade: 0.02, PositionSizePercent: 0.5}},
		{"negative commission", BacktestConfig{InitialBalance: 1000, CommissionRate: -0.01, MaxPositions: 1, RiskPerTrade: 0.02, PositionSizePercent: 0.5}},
		{"negative slippage", BacktestConfig{InitialBalance: 1000, SlippageBps: -1, MaxPositions: 1, RiskPerTrade: 0.02, PositionSizePercent: 0.5}},
		{"zero max positions", BacktestConfig{InitialBalance: 1000, MaxPositions: 0, RiskPerTrade: 0.02, PositionSizePercent: 0.5}},
		{"risk per trade out of range", BacktestConfig{InitialBalance: 1000, MaxPositions: 1, RiskPerTrade: 1.5, PositionSizePercent: 0.5}},
		{"position size percent out of range", BacktestConfig{InitialBalance: 1000, MaxPositions: 1, RiskPerTrade: 0.02, PositionSizePercent: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			var configErr *errs.ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected *errs.ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestValidateStopLossAndTakeProfitBounds(t *testing.T) {
	base := BacktestConfig{InitialBalance: 1000, MaxPositions: 1, RiskPerTrade: 0.02, PositionSizePercent: 0.5}

	badSL := 1.5
	cfg := base
	cfg.StopLossPercent = &badSL
	var configErr *errs.ConfigError
	if err := cfg.Validate(); !errors.As(err, &configErr) {
		t.Fatalf("expected *errs.ConfigError for out-of-range stop_loss_percent, got %v", err)
	}

	badTP := 0.0
	cfg = base
	cfg.TakeProfitPercent = &badTP
	if err := cfg.Validate(); !errors.As(err, &configErr) {
		t.Fatalf("expected *errs.ConfigError for out-of-range take_profit_percent, got %v", err)
	}
}
