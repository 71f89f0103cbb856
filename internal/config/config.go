// Package config loads a screening-run configuration from an optional
// YAML/JSON file, environment variables and command-line flags, in that
// increasing order of priority, per SPEC_FULL.md §1.
//
// Grounded on the market-maker example's internal/config.Load
// (viper.New + SetConfigFile + SetEnvPrefix + AutomaticEnv + Unmarshal,
// then explicit env-var overrides for a handful of fields) and the CLI
// flag surface in spec.md §6, which this package's Load/BindFlags make
// concrete with stdlib flag.
package config

import (
	"flag"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// RunConfig is one screening run's full configuration: economic knobs,
// filter thresholds, score weights, worker count and I/O paths.
type RunConfig struct {
	DataPath       string `mapstructure:"data_path"`
	StrategiesPath string `mapstructure:"strategies_path"`
	OutputPath     string `mapstructure:"output_path"`
	LogLevel       string `mapstructure:"log_level"`
	TopN           int    `mapstructure:"top_n"`
	Workers        int    `mapstructure:"workers"`
	Serve          bool   `mapstructure:"serve"`
	APIAddr        string `mapstructure:"api_addr"`

	InitialBalance      float64  `mapstructure:"initial_balance"`
	CommissionRate      float64  `mapstructure:"commission_rate"`
	SlippageBps         float64  `mapstructure:"slippage_bps"`
	RiskPerTrade        float64  `mapstructure:"risk_per_trade"`
	MaxPositions        int      `mapstructure:"max_positions"`
	PositionSizePercent float64  `mapstructure:"position_size_percent"`
	StopLossPercent     *float64 `mapstructure:"stop_loss_percent"`
	TakeProfitPercent   *float64 `mapstructure:"take_profit_percent"`

	MinTrades   int      `mapstructure:"min_trades"`
	MinWinRate  *float64 `mapstructure:"min_win_rate"`
	MinSharpe   *float64 `mapstructure:"min_sharpe"`
	MinReturn   *float64 `mapstructure:"min_return"`
	MaxDrawdown *float64 `mapstructure:"max_drawdown"`

	ScoreWeights [5]float64 `mapstructure:"-"`
}

// Default returns the baseline configuration: spec.md's default
// BacktestConfig economics, no filter thresholds, and the batch
// orchestrator's default score weights.
func Default() RunConfig {
	return RunConfig{
		LogLevel:            "info",
		APIAddr:             "localhost:8090",
		TopN:                50,
		Workers:             0, // not read by the batch run, whose pool always has NumCPU workers
		InitialBalance:      10000.0,
		CommissionRate:      0.001,
		SlippageBps:         5.0,
		RiskPerTrade:        0.02,
		MaxPositions:        1,
		PositionSizePercent: 0.5,
		MinTrades:           1,
		ScoreWeights:        [5]float64{0.3, 0.2, 0.2, 0.15, 0.15},
	}
}

// Load reads an optional config file (YAML or JSON, detected by
// extension) at path, overlays SCREEN_-prefixed environment variables,
// and unmarshals into a RunConfig seeded with Default(). An empty path
// skips the file read; a missing file is an error only when path is
// non-empty.
func Load(path string) (RunConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("SCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows, so bind every RunConfig
	// key to its SCREEN_ variable; AutomaticEnv alone would miss keys that
	// the config file does not mention.
	rt := reflect.TypeOf(cfg)
	for i := 0; i < rt.NumField(); i++ {
		if key := rt.Field(i).Tag.Get("mapstructure"); key != "" && key != "-" {
			if err := v.BindEnv(key); err != nil {
				return RunConfig{}, fmt.Errorf("bind env %q: %w", key, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return RunConfig{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return RunConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Flags holds the CLI flag destinations used by BindFlags; Apply copies
// any flag explicitly set by the user over the config's existing value,
// so flags (highest priority) win over file/env (lower priority) without
// clobbering unset flags back to their zero value.
type Flags struct {
	fs *flag.FlagSet

	dataPath, strategiesPath, outputPath, logLevel, scoreWeights, apiAddr *string
	topN, workers, maxPositions, minTrades                                *int
	initialBalance, commissionRate, slippageBps, riskPerTrade             *float64
	minWinRate, minSharpe, minReturn, maxDrawdown                         *float64
	stopLossPercent, takeProfitPercent                                    *float64
	serve                                                                 *bool
}

// BindFlags registers the CLI surface described in spec.md §6 onto fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	f.dataPath = fs.String("data", "", "path to the OHLCV data file")
	f.strategiesPath = fs.String("strategies", "", "path to a JSON array of strategy ASTs")
	f.outputPath = fs.String("output", "", "path to write the ranked JSON summary")
	f.logLevel = fs.String("log-level", "", "log level (debug, info, warn, error)")
	f.scoreWeights = fs.String("score-weights", "", "comma-separated sharpe,sortino,pf,return,drawdown weights")
	f.apiAddr = fs.String("api-addr", "", "host:port for the results API when --serve is set")
	f.serve = fs.Bool("serve", false, "keep running and serve results over HTTP after the batch completes")
	f.topN = fs.Int("top", 0, "number of top strategies to keep")
	f.workers = fs.Int("workers", 0, "worker pool size (stored in the config; the batch run always uses NumCPU workers)")
	f.maxPositions = fs.Int("max-positions", 0, "maximum concurrent open positions")
	f.minTrades = fs.Int("min-trades", -1, "minimum trade count filter")
	f.initialBalance = fs.Float64("initial-balance", 0, "starting account balance")
	f.commissionRate = fs.Float64("commission-rate", -1, "commission rate as a fraction")
	f.slippageBps = fs.Float64("slippage-bps", -1, "slippage in basis points")
	f.riskPerTrade = fs.Float64("risk-per-trade", 0, "fraction of balance risked per trade")
	f.minWinRate = fs.Float64("min-win-rate", -1, "minimum win rate filter")
	f.minSharpe = fs.Float64("min-sharpe", -1e18, "minimum Sharpe ratio filter")
	f.minReturn = fs.Float64("min-return", -1e18, "minimum total return filter")
	f.maxDrawdown = fs.Float64("max-drawdown", -1, "maximum drawdown filter")
	f.stopLossPercent = fs.Float64("stop-loss-percent", -1, "stop-loss percent (0,1), unset if omitted")
	f.takeProfitPercent = fs.Float64("take-profit-percent", -1, "take-profit percent (0,1), unset if omitted")
	return f
}

// Apply overlays any flag the user explicitly passed onto cfg, the
// highest-priority override layer per SPEC_FULL.md §1.
func (f *Flags) Apply(cfg RunConfig) (RunConfig, error) {
	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["data"] {
		cfg.DataPath = *f.dataPath
	}
	if set["strategies"] {
		cfg.StrategiesPath = *f.strategiesPath
	}
	if set["serve"] {
		cfg.Serve = *f.serve
	}
	if set["api-addr"] {
		cfg.APIAddr = *f.apiAddr
	}
	if set["output"] {
		cfg.OutputPath = *f.outputPath
	}
	if set["log-level"] {
		cfg.LogLevel = *f.logLevel
	}
	if set["top"] {
		cfg.TopN = *f.topN
	}
	if set["workers"] {
		cfg.Workers = *f.workers
	}
	if set["max-positions"] {
		cfg.MaxPositions = *f.maxPositions
	}
	if set["min-trades"] {
		cfg.MinTrades = *f.minTrades
	}
	if set["initial-balance"] {
		cfg.InitialBalance = *f.initialBalance
	}
	if set["commission-rate"] {
		cfg.CommissionRate = *f.commissionRate
	}
	if set["slippage-bps"] {
		cfg.SlippageBps = *f.slippageBps
	}
	if set["risk-per-trade"] {
		cfg.RiskPerTrade = *f.riskPerTrade
	}
	if set["min-win-rate"] {
		v := *f.minWinRate
		cfg.MinWinRate = &v
	}
	if set["min-sharpe"] {
		v := *f.minSharpe
		cfg.MinSharpe = &v
	}
	if set["min-return"] {
		v := *f.minReturn
		cfg.MinReturn = &v
	}
	if set["max-drawdown"] {
		v := *f.maxDrawdown
		cfg.MaxDrawdown = &v
	}
	if set["stop-loss-percent"] {
		v := *f.stopLossPercent
		cfg.StopLossPercent = &v
	}
	if set["take-profit-percent"] {
		v := *f.takeProfitPercent
		cfg.TakeProfitPercent = &v
	}
	if set["score-weights"] {
		w, err := parseWeights(*f.scoreWeights)
		if err != nil {
			return cfg, err
		}
		cfg.ScoreWeights = w
	}
	return cfg, nil
}

func parseWeights(s string) ([5]float64, error) {
	var out [5]float64
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return out, fmt.Errorf("score-weights must have exactly 5 comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, fmt.Errorf("score-weights[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// FormatCurrency renders a monetary amount at the config/report boundary
// using shopspring/decimal, matching the reference backend's boundary
// between float64 hot-path arithmetic and decimal display formatting
// (see DESIGN.md).
func FormatCurrency(amount float64) string {
	return decimal.NewFromFloat(amount).Round(2).StringFixed(2)
}
