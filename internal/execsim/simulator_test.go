package execsim

import (
	"testing"

	"github.com/atlas-desktop/trading-backend/internal/precompute"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

func buildEnriched(candles []types.Candle) *precompute.EnrichedTable {
	table, err := types.NewOHLCVTable(candles)
	if err != nil {
		panic(err)
	}
	return &precompute.EnrichedTable{OHLCVTable: table, Columns: map[string][]float64{}}
}

func allTrue(n int) []bool {
	b := make([]bool, n)
	for i := range b {
		b[i] = true
	}
	return b
}
func allFalse(n int) []bool { return make([]bool, n) }

func TestBuyAndHoldEndOfData(t *testing.T) {
	n := 100
	candles := make([]types.Candle, n)
	price := 29000.0
	for i := 0; i < n; i++ {
		candles[i] = types.Candle{Timestamp: int64(i + 1) * 60000, Open: price, High: price + 5, Low: price - 5, Close: price, Volume: 1000}
		price += 10
	}
	table := buildEnriched(candles)
	entry := allTrue(n)
	exit := allFalse(n)
	cfg := types.DefaultBacktestConfig()

	trades, curve, err := Run(table, entry, exit, cfg, "buy-and-hold")
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected exactly 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ExitReason != types.ExitEndOfData {
		t.Fatalf("expected EndOfData exit, got %v", tr.ExitReason)
	}
	if tr.PnL <= 0 {
		t.Fatalf("expected positive pnl on a monotonically rising series, got %v", tr.PnL)
	}
	if len(curve) != 1 {
		t.Fatalf("expected one equity point, got %d", len(curve))
	}
}

func TestStopLossOnlyExit(t *testing.T) {
	candles := []types.Candle{
		{Timestamp: 0, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000},
		{Timestamp: 1, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000},
		{Timestamp: 2, Open: 95, High: 100, Low: 90, Close: 95, Volume: 1000},
	}
	table := buildEnriched(candles)
	entry := []bool{false, true, false}
	exit := allFalse(3)
	sl := 0.05
	cfg := types.DefaultBacktestConfig()
	cfg.StopLossPercent = &sl
	cfg.SlippageBps = 0

	trades, _, err := Run(table, entry, exit, cfg, "sl-only")
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ExitReason != types.ExitStopLoss {
		t.Fatalf("expected StopLoss exit, got %v", tr.ExitReason)
	}
	if tr.ExitPrice != 95.0 {
		t.Fatalf("expected exit at 95.0, got %v", tr.ExitPrice)
	}
	wantSize := (cfg.InitialBalance * cfg.RiskPerTrade) / (100.0 * sl)
	if diff := wantSize - tr.Size; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected risk-based size %v, got %v", wantSize, tr.Size)
	}
}

func TestTakeProfitBeatsStopLossSameBar(t *testing.T) {
	candles := []types.Candle{
		{Timestamp: 0, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000},
		{Timestamp: 1, Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000},
		{Timestamp: 2, Open: 100, High: 106, Low: 94, Close: 100, Volume: 1000},
	}
	table := buildEnriched(candles)
	entry := []bool{false, true, false}
	exit := allFalse(3)
	sl, tp := 0.05, 0.05
	cfg := types.DefaultBacktestConfig()
	cfg.StopLossPercent = &sl
	cfg.TakeProfitPercent = &tp
	cfg.SlippageBps = 0

	trades, _, err := Run(table, entry, exit, cfg, "tp-vs-sl")
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 || trades[0].ExitReason != types.ExitTakeProfit {
		t.Fatalf("expected a single TakeProfit exit, got %+v", trades)
	}
	if trades[0].ExitPrice != 105.0 {
		t.Fatalf("expected exit at 105.0, got %v", trades[0].ExitPrice)
	}
}

func TestNoSignalsProducesNoTrades(t *testing.T) {
	candles := []types.Candle{
		{Timestamp: 0, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000},
		{Timestamp: 1, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000},
	}
	table := buildEnriched(candles)
	trades, curve, err := Run(table, allFalse(2), allFalse(2), types.DefaultBacktestConfig(), "flat")
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 0 || len(curve) != 0 {
		t.Fatalf("expected no trades and no equity points, got %d/%d", len(trades), len(curve))
	}
}

func TestBalanceInvariant(t *testing.T) {
	n := 50
	candles := make([]types.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		high, low := price+2, price-2
		candles[i] = types.Candle{Timestamp: int64(i + 1) * 60000, Open: price, High: high, Low: low, Close: price, Volume: 1000}
		if i%2 == 0 {
			price += 3
		} else {
			price -= 1
		}
	}
	table := buildEnriched(candles)
	entry := make([]bool, n)
	exit := make([]bool, n)
	for i := 0; i < n; i++ {
		if i%6 == 0 {
			entry[i] = true
		}
		if i%6 == 3 {
			exit[i] = true
		}
	}
	cfg := types.DefaultBacktestConfig()
	trades, curve, err := Run(table, entry, exit, cfg, "invariant")
	if err != nil {
		t.Fatal(err)
	}
	if len(curve) == 0 {
		t.Fatalf("expected at least one closed trade")
	}
	var sumPnL float64
	for _, tr := range trades {
		sumPnL += tr.PnL
	}
	finalBalance := cfg.InitialBalance + sumPnL
	tol := 1e-6 * cfg.InitialBalance
	// The final balance Run reports on its equity curve must equal the
	// initial balance plus the sum of trade P&Ls.
	gotFinal := curve[len(curve)-1].Balance
	if diff := gotFinal - finalBalance; diff > tol || diff < -tol {
		t.Fatalf("balance invariant violated: %v vs %v", gotFinal, finalBalance)
	}
}
