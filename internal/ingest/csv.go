// Package ingest implements the external-collaborator loaders spec.md §6
// describes only by interface: an OHLCV CSV reader matching the
// six-column schema ("timestamp, open, high, low, close, volume", header
// row required) and a StrategyAST JSON-array loader. Neither is part of
// the core (C1-C8); both exist so cmd/screener is a runnable program
// rather than a library with no entry point.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// LoadOHLCVCSV reads a candle sequence from a CSV file with header
// naming the columns "timestamp,open,high,low,close,volume" (in any order;
// names must match exactly, case-sensitively) and builds a validated
// OHLCVTable.
// Grounded on the encoding/csv loaders used across the example pack's
// backtest CLIs (e.g. crypto-dca-bot's cmd/backtest).
func LoadOHLCVCSV(path string) (*types.OHLCVTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var candles []types.Candle
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(candles)+1, err)
		}
		c, err := parseCandle(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(candles)+1, err)
		}
		candles = append(candles, c)
	}

	return types.NewOHLCVTable(candles)
}

type colIndex struct {
	ts, open, high, low, close, volume int
}

func columnIndex(header []string) (colIndex, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	required := []string{"timestamp", "open", "high", "low", "close", "volume"}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return colIndex{}, fmt.Errorf("missing required column %q", name)
		}
	}
	return colIndex{
		ts:     idx["timestamp"],
		open:   idx["open"],
		high:   idx["high"],
		low:    idx["low"],
		close:  idx["close"],
		volume: idx["volume"],
	}, nil
}

func parseCandle(row []string, c colIndex) (types.Candle, error) {
	ts, err := strconv.ParseInt(row[c.ts], 10, 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("timestamp: %w", err)
	}
	open, err := strconv.ParseFloat(row[c.open], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("open: %w", err)
	}
	high, err := strconv.ParseFloat(row[c.high], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("high: %w", err)
	}
	low, err := strconv.ParseFloat(row[c.low], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("low: %w", err)
	}
	closeP, err := strconv.ParseFloat(row[c.close], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("close: %w", err)
	}
	volume, err := strconv.ParseFloat(row[c.volume], 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("volume: %w", err)
	}
	return types.Candle{Timestamp: ts, Open: open, High: high, Low: low, Close: closeP, Volume: volume}, nil
}
