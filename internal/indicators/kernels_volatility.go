package indicators

import "math"

// ATR is mean true range over `period` trailing bars.
func ATR(highs, lows, closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		if i-period < 0 {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			hl := highs[j] - lows[j]
			hc := math.Abs(highs[j] - closes[j-1])
			lc := math.Abs(lows[j] - closes[j-1])
			sum += math.Max(hl, math.Max(hc, lc))
		}
		out[i] = sum / float64(period)
	}
	return out
}

// BollingerMiddle returns the Bollinger Bands' centerline (the SMA), the
// primary scalar used for condition comparisons per spec.
func BollingerMiddle(closes []float64, period int, _ float64) []float64 {
	return SMA(closes, period)
}

// BollingerBands returns lower, middle, upper for callers that need the
// full envelope; condition compilation only ever uses middle.
func BollingerBands(closes []float64, period int, stdDev float64) (lower, middle, upper []float64) {
	n := len(closes)
	lower = make([]float64, n)
	middle = make([]float64, n)
	upper = make([]float64, n)
	sma := SMA(closes, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(sma[i]) {
			lower[i], middle[i], upper[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - sma[i]
			variance += d * d
		}
		variance /= float64(period)
		std := math.Sqrt(variance)
		middle[i] = sma[i]
		lower[i] = sma[i] - stdDev*std
		upper[i] = sma[i] + stdDev*std
	}
	return
}

// KeltnerMiddle returns the Keltner Channels' centerline (an EMA of close),
// the primary scalar used for condition comparisons per spec.
func KeltnerMiddle(highs, lows, closes []float64, period int, multiplier float64) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		// Keltner's middle is only defined where ATR is also defined: the
		// reference computes ema(close) and atr(...) from the same window
		// and returns neither if either fails.
		if i-period < 0 {
			out[i] = math.NaN()
			continue
		}
		start := i + 1 - period - 1
		if start < 0 {
			start = 0
		}
		out[i] = emaWindow(closes[start:i+1], period)
	}
	_ = multiplier // multiplier only affects the upper/lower envelope
	return out
}

// KeltnerChannels returns lower, middle, upper for callers needing the
// full envelope.
func KeltnerChannels(highs, lows, closes []float64, period int, multiplier float64) (lower, middle, upper []float64) {
	n := len(closes)
	lower = make([]float64, n)
	middle = make([]float64, n)
	upper = make([]float64, n)
	atr := ATR(highs, lows, closes, period)
	mid := KeltnerMiddle(highs, lows, closes, period, multiplier)
	for i := 0; i < n; i++ {
		if math.IsNaN(mid[i]) || math.IsNaN(atr[i]) {
			lower[i], middle[i], upper[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		middle[i] = mid[i]
		lower[i] = mid[i] - multiplier*atr[i]
		upper[i] = mid[i] + multiplier*atr[i]
	}
	return
}
