package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/atlas-desktop/trading-backend/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.LogLevel)
	}
	if cfg.TopN != 50 {
		t.Errorf("expected default TopN 50, got %d", cfg.TopN)
	}
	sum := 0.0
	for _, w := range cfg.ScoreWeights {
		sum += w
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("expected default score weights to sum to ~1, got %v (%f)", cfg.ScoreWeights, sum)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InitialBalance != 10000.0 {
		t.Errorf("expected default initial balance, got %v", cfg.InitialBalance)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "log_level: debug\ntop_n: 25\ninitial_balance: 5000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.TopN != 25 {
		t.Errorf("expected top_n 25, got %d", cfg.TopN)
	}
	if cfg.InitialBalance != 5000 {
		t.Errorf("expected initial_balance 5000, got %v", cfg.InitialBalance)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected an error for a missing config file, got nil")
	}
}

func TestFlagsApplyOnlyOverridesSetFlags(t *testing.T) {
	base := config.Default()
	base.LogLevel = "info"
	base.TopN = 50

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse([]string{"--top", "10"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := flags.Apply(base)
	if err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	if cfg.TopN != 10 {
		t.Errorf("expected --top to override TopN to 10, got %d", cfg.TopN)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level to remain unchanged at 'info', got %q", cfg.LogLevel)
	}
}

func TestFlagsApplyScoreWeights(t *testing.T) {
	base := config.Default()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse([]string{"--score-weights", "0.5,0.1,0.1,0.2,0.1"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := flags.Apply(base)
	if err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	want := [5]float64{0.5, 0.1, 0.1, 0.2, 0.1}
	if cfg.ScoreWeights != want {
		t.Errorf("expected score weights %v, got %v", want, cfg.ScoreWeights)
	}
}

func TestFlagsApplyInvalidScoreWeights(t *testing.T) {
	base := config.Default()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse([]string{"--score-weights", "0.5,0.5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := flags.Apply(base); err == nil {
		t.Error("expected an error for a malformed --score-weights value, got nil")
	}
}

func TestFlagsApplyNullableFilters(t *testing.T) {
	base := config.Default()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse([]string{"--min-sharpe", "1.5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := flags.Apply(base)
	if err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	if cfg.MinSharpe == nil || *cfg.MinSharpe != 1.5 {
		t.Errorf("expected MinSharpe to be set to 1.5, got %v", cfg.MinSharpe)
	}
	if cfg.MinWinRate != nil {
		t.Errorf("expected MinWinRate to remain unset, got %v", *cfg.MinWinRate)
	}
}

func TestFormatCurrency(t *testing.T) {
	got := config.FormatCurrency(1234.5)
	if got != "1234.50" {
		t.Errorf("expected '1234.50', got %q", got)
	}
}
