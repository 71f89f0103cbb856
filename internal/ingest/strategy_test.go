package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-desktop/trading-backend/internal/ingest"
)

func TestLoadStrategiesJSON(t *testing.T) {
	content := `[
		{
			"name": "golden-cross",
			"entry_rules": {
				"operator": "and",
				"conditions": [
					{
						"indicator": {"name": "sma", "params": [50]},
						"comparison": "crosses_above",
						"value": {"kind": "indicator_ref", "indicator": {"name": "sma", "params": [200]}}
					}
				]
			},
			"exit_rules": {
				"operator": "or",
				"conditions": [
					{
						"indicator": {"name": "rsi", "params": [14]},
						"comparison": "greater_than",
						"value": {"kind": "number", "number": 70}
					}
				]
			}
		}
	]`
	dir := t.TempDir()
	path := filepath.Join(dir, "strategies.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write strategies file: %v", err)
	}

	strategies, err := ingest.LoadStrategiesJSON(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(strategies) != 1 {
		t.Fatalf("expected 1 strategy, got %d", len(strategies))
	}
	if strategies[0].Name != "golden-cross" {
		t.Errorf("expected name 'golden-cross', got %q", strategies[0].Name)
	}
	if len(strategies[0].EntryRules.Conditions) != 1 {
		t.Fatalf("expected 1 entry condition, got %d", len(strategies[0].EntryRules.Conditions))
	}
}

func TestLoadStrategiesJSONMissingFile(t *testing.T) {
	if _, err := ingest.LoadStrategiesJSON("/nonexistent/strategies.json"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadStrategiesJSONMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := ingest.LoadStrategiesJSON(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
