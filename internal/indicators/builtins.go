package indicators

import (
	"fmt"

	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// resolveColumns applies the missing-column recovery policy: high/low
// default to close, volume defaults to a constant 1000.0, when the table
// lacks them. This is a recovery policy, not an invariant (spec §4.4) —
// most real OHLCV tables carry all six columns.
func resolveColumns(table *types.OHLCVTable) (high, low, volume []float64) {
	n := table.Len()
	high, low, volume = table.High, table.Low, table.Volume
	if len(high) != n {
		high = table.Close
	}
	if len(low) != n {
		low = table.Close
	}
	if len(volume) != n {
		volume = make([]float64, n)
		for i := range volume {
			volume[i] = 1000.0
		}
	}
	return
}

func requireParam(params []float64, idx int, name string) (float64, error) {
	if idx >= len(params) {
		return 0, fmt.Errorf("%s requires parameter %d", name, idx)
	}
	return params[idx], nil
}

// RegisterBuiltins populates a fresh registry with the fourteen required
// indicator kernels. Call once, before any backtest runs, per spec §9's
// explicit register_builtins() contract (no init-time side effects).
func RegisterBuiltins(r *Registry) {
	r.Register(types.IndicatorMetadata{
		Name: "sma", Category: types.CategoryTrend, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 200, 20)},
		Description: "Simple Moving Average",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "sma")
		if err != nil {
			return nil, err
		}
		return SMA(t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "ema", Category: types.CategoryTrend, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 200, 12)},
		Description: "Exponential Moving Average",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "ema")
		if err != nil {
			return nil, err
		}
		return EMA(t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "wma", Category: types.CategoryTrend, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 200, 20)},
		Description: "Weighted Moving Average",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "wma")
		if err != nil {
			return nil, err
		}
		return WMA(t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "vwma", Category: types.CategoryTrend, InputKind: types.InputMultiSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 200, 20)},
		Description: "Volume Weighted Moving Average",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "vwma")
		if err != nil {
			return nil, err
		}
		_, _, volume := resolveColumns(t)
		return VWMA(t.Close, volume, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "rsi", Category: types.CategoryMomentum, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 100, 14)},
		Description: "Relative Strength Index",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "rsi")
		if err != nil {
			return nil, err
		}
		return RSI(t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "macd", Category: types.CategoryMomentum, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters: []types.ParameterDef{
			types.PeriodParam("fast", 2, 50, 12),
			types.PeriodParam("slow", 2, 100, 26),
			types.PeriodParam("signal", 2, 50, 9),
		},
		Description: "Moving Average Convergence Divergence (macd-line)",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		fast, err := requireParam(p, 0, "macd")
		if err != nil {
			return nil, err
		}
		slow, err := requireParam(p, 1, "macd")
		if err != nil {
			return nil, err
		}
		signal, err := requireParam(p, 2, "macd")
		if err != nil {
			return nil, err
		}
		return MACD(t.Close, int(fast), int(slow), int(signal)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "stochastic", Category: types.CategoryMomentum, InputKind: types.InputCandleSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 5, 50, 14)},
		Description: "Stochastic Oscillator (%K)",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "stochastic")
		if err != nil {
			return nil, err
		}
		high, low, _ := resolveColumns(t)
		return Stochastic(high, low, t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "roc", Category: types.CategoryMomentum, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 1, 100, 12)},
		Description: "Rate of Change",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "roc")
		if err != nil {
			return nil, err
		}
		return ROC(t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "atr", Category: types.CategoryVolatility, InputKind: types.InputCandleSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 100, 14)},
		Description: "Average True Range",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "atr")
		if err != nil {
			return nil, err
		}
		high, low, _ := resolveColumns(t)
		return ATR(high, low, t.Close, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "bollinger_bands", Category: types.CategoryVolatility, InputKind: types.InputPriceSeries, Lookback: 1,
		Parameters: []types.ParameterDef{
			types.PeriodParam("period", 2, 100, 20),
			types.MultiplierParam("std_dev", 0.5, 4, 2),
		},
		Description: "Bollinger Bands (middle line)",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "bollinger_bands")
		if err != nil {
			return nil, err
		}
		stdDev, err := requireParam(p, 1, "bollinger_bands")
		if err != nil {
			return nil, err
		}
		return BollingerMiddle(t.Close, int(period), stdDev), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "keltner_channels", Category: types.CategoryVolatility, InputKind: types.InputCandleSeries, Lookback: 1,
		Parameters: []types.ParameterDef{
			types.PeriodParam("period", 2, 100, 20),
			types.MultiplierParam("multiplier", 0.5, 5, 2),
		},
		Description: "Keltner Channels (middle line)",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "keltner_channels")
		if err != nil {
			return nil, err
		}
		multiplier, err := requireParam(p, 1, "keltner_channels")
		if err != nil {
			return nil, err
		}
		high, low, _ := resolveColumns(t)
		return KeltnerMiddle(high, low, t.Close, int(period), multiplier), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "obv", Category: types.CategoryVolume, InputKind: types.InputMultiSeries, Lookback: 1,
		Parameters:  nil,
		Description: "On Balance Volume",
	}, func(t *types.OHLCVTable, _ []float64) ([]float64, error) {
		_, _, volume := resolveColumns(t)
		return OBV(t.Close, volume), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "mfi", Category: types.CategoryVolume, InputKind: types.InputMultiSeries, Lookback: 1,
		Parameters:  []types.ParameterDef{types.PeriodParam("period", 2, 100, 14)},
		Description: "Money Flow Index",
	}, func(t *types.OHLCVTable, p []float64) ([]float64, error) {
		period, err := requireParam(p, 0, "mfi")
		if err != nil {
			return nil, err
		}
		high, low, volume := resolveColumns(t)
		return MFI(high, low, t.Close, volume, int(period)), nil
	})

	r.Register(types.IndicatorMetadata{
		Name: "vwap", Category: types.CategoryVolume, InputKind: types.InputMultiSeries, Lookback: 1,
		Parameters:  nil,
		Description: "Volume Weighted Average Price",
	}, func(t *types.OHLCVTable, _ []float64) ([]float64, error) {
		high, low, volume := resolveColumns(t)
		return VWAP(high, low, t.Close, volume), nil
	})
}
