package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// LoadStrategiesJSON reads a JSON array of StrategyAST from path, the
// serializable shape spec.md §6 requires to be round-trip-safe.
func LoadStrategiesJSON(path string) ([]*types.StrategyAST, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var strategies []*types.StrategyAST
	if err := json.Unmarshal(b, &strategies); err != nil {
		return nil, fmt.Errorf("unmarshal strategies: %w", err)
	}
	return strategies, nil
}
