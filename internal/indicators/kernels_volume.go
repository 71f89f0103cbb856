package indicators

import "math"

// OBV is on-balance volume: a running cumulative sum of volume, signed by
// the direction of the close-to-close change (unchanged on a flat close).
// Implemented as true running state rather than the reference's
// recompute-from-series-start-every-row approach; both agree exactly
// because the reference always rescans from index 0.
func OBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	if len(out) == 0 {
		return out
	}
	out[0] = volumes[0]
	for i := 1; i < len(out); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// MFI is the money flow index over `period` trailing bars; a zero negative
// flow saturates at 100 rather than dividing by zero.
func MFI(highs, lows, closes, volumes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		if i-period < 0 {
			out[i] = math.NaN()
			continue
		}
		var positive, negative float64
		for j := i - period + 1; j <= i; j++ {
			typical := (highs[j] + lows[j] + closes[j]) / 3.0
			typicalPrev := (highs[j-1] + lows[j-1] + closes[j-1]) / 3.0
			moneyFlow := typical * volumes[j]
			if typical > typicalPrev {
				positive += moneyFlow
			} else {
				negative += moneyFlow
			}
		}
		if negative == 0 {
			out[i] = 100.0
			continue
		}
		ratio := positive / negative
		out[i] = 100.0 - (100.0 / (1.0 + ratio))
	}
	return out
}

// VWAP is the volume-weighted average price cumulative from series start.
// True running cumulative state, mathematically identical to the
// reference's full-history rescan at each row.
func VWAP(highs, lows, closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	var sumPV, sumV float64
	for i := range out {
		typical := (highs[i] + lows[i] + closes[i]) / 3.0
		sumPV += typical * volumes[i]
		sumV += volumes[i]
		if sumV == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sumPV / sumV
	}
	return out
}
