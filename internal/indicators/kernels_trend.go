// Package indicators implements the indicator kernels (pure numeric
// functions over OHLCV columns) and the process-wide registry mapping an
// indicator name to its metadata and compute function.
//
// Every kernel returns a column the same length as its input, with NaN
// ("undefined" sentinel) in the warm-up rows its trailing window cannot
// yet cover (EMA, MACD, OBV and VWAP emit a value from row 0), and is
// byte-identical across repeated invocations on identical inputs.
package indicators

import "math"

// SMA is the simple moving average over `period` trailing closes.
func SMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += closes[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA is the exponential moving average. Each row recomputes over the
// trailing window capped at `period` bars (start = max(0, row+1-period)),
// seeded with that window's first value and folded forward with
// smoothing k = 2/(period+1) — matching the reference engine, which
// re-seeds at the window boundary rather than running one continuous EMA
// across the whole series. Lookback is 1: only an empty window yields NaN.
func EMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	k := 2.0 / (float64(period) + 1.0)
	for i := range out {
		start := i + 1 - period
		if start < 0 {
			start = 0
		}
		window := closes[start : i+1]
		if len(window) == 0 {
			out[i] = math.NaN()
			continue
		}
		val := window[0]
		for _, price := range window[1:] {
			val = price*k + val*(1-k)
		}
		out[i] = val
	}
	return out
}

// WMA is the linearly weighted moving average over `period` trailing
// closes, most recent bar weighted highest.
func WMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	denom := float64(period*(period+1)) / 2.0
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		weight := 1.0
		for j := i - period + 1; j <= i; j++ {
			sum += closes[j] * weight
			weight++
		}
		out[i] = sum / denom
	}
	return out
}

// VWMA is the volume-weighted moving average over `period` trailing bars.
func VWMA(closes, volumes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		var num, den float64
		for j := i - period + 1; j <= i; j++ {
			num += closes[j] * volumes[j]
			den += volumes[j]
		}
		if den == 0 {
			out[i] = closes[i]
			continue
		}
		out[i] = num / den
	}
	return out
}
