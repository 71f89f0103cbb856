// Package types holds the data model shared across the screening engine:
// candles, the indicator/strategy AST, backtest configuration, and results.
package types

import (
	"fmt"
	"math"
)

// Candle is a single OHLCV bar. Timestamp is milliseconds since epoch.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// OHLCVTable is a columnar, immutable-once-built price series. All slices
// share the same length. High/Low/Volume may be absent (nil), in which case
// consumers fall back to the documented recovery policy (see
// resolveColumns in internal/indicators).
type OHLCVTable struct {
	Timestamp []int64
	Open      []float64
	High      []float64
	Low       []float64
	Close     []float64
	Volume    []float64
}

// Len returns the number of rows in the table.
func (t *OHLCVTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Close)
}

// NewOHLCVTable builds a table from a candle sequence, validating the
// invariants: low <= open,close <= high, strictly increasing timestamps,
// all-finite prices and volumes. A violation is returned as a plain error
// naming the offending candle index.
func NewOHLCVTable(candles []Candle) (*OHLCVTable, error) {
	n := len(candles)
	t := &OHLCVTable{
		Timestamp: make([]int64, n),
		Open:      make([]float64, n),
		High:      make([]float64, n),
		Low:       make([]float64, n),
		Close:     make([]float64, n),
		Volume:    make([]float64, n),
	}
	var prevTS int64
	for i, c := range candles {
		if i > 0 && c.Timestamp <= prevTS {
			return nil, fmt.Errorf("candle %d: timestamp %d does not strictly increase from %d", i, c.Timestamp, prevTS)
		}
		for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("candle %d: non-finite value (o=%v h=%v l=%v c=%v v=%v)", i, c.Open, c.High, c.Low, c.Close, c.Volume)
			}
		}
		if !(c.Low <= c.Open && c.Open <= c.High && c.Low <= c.Close && c.Close <= c.High) {
			return nil, fmt.Errorf("candle %d: violates low<=open,close<=high (o=%v h=%v l=%v c=%v)", i, c.Open, c.High, c.Low, c.Close)
		}
		t.Timestamp[i] = c.Timestamp
		t.Open[i] = c.Open
		t.High[i] = c.High
		t.Low[i] = c.Low
		t.Close[i] = c.Close
		t.Volume[i] = c.Volume
		prevTS = c.Timestamp
	}
	return t, nil
}

// Row reconstructs the Candle at index i.
func (t *OHLCVTable) Row(i int) Candle {
	return Candle{
		Timestamp: t.Timestamp[i],
		Open:      t.Open[i],
		High:      t.High[i],
		Low:       t.Low[i],
		Close:     t.Close[i],
		Volume:    t.Volume[i],
	}
}
