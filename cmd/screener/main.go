// Command screener runs a massive-scale trading-strategy screening batch:
// load an OHLCV series and a population of strategy ASTs, backtest every
// strategy, filter and rank survivors, and persist/report the top N.
//
// Grounded on the reference backend's cmd/server/main.go for overall
// shape (flag parsing, logger setup, graceful shutdown on SIGINT/SIGTERM)
// trimmed to this program's much smaller dependency graph: no
// blockchain clients, market-data feed, or autonomous agent — this is a
// batch job, not a live trading process.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/trading-backend/internal/api"
	"github.com/atlas-desktop/trading-backend/internal/ast"
	"github.com/atlas-desktop/trading-backend/internal/batch"
	"github.com/atlas-desktop/trading-backend/internal/config"
	"github.com/atlas-desktop/trading-backend/internal/indicators"
	"github.com/atlas-desktop/trading-backend/internal/ingest"
	"github.com/atlas-desktop/trading-backend/internal/logging"
	"github.com/atlas-desktop/trading-backend/internal/persist"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("screener", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional YAML/JSON config file")
	flags := config.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return 1
	}
	cfg, err = flags.Apply(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flag error:", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return 1
	}
	defer logger.Sync()

	if cfg.DataPath == "" || cfg.StrategiesPath == "" {
		logger.Error("both --data and --strategies are required")
		return 2
	}

	runID := uuid.NewString()
	logger.Info("starting screening run",
		zap.String("run_id", runID),
		zap.String("data", cfg.DataPath),
		zap.String("strategies", cfg.StrategiesPath),
	)

	table, err := ingest.LoadOHLCVCSV(cfg.DataPath)
	if err != nil {
		logger.Error("failed to load OHLCV data", zap.Error(err))
		return 1
	}

	strategies, err := ingest.LoadStrategiesJSON(cfg.StrategiesPath)
	if err != nil {
		logger.Error("failed to load strategies", zap.Error(err))
		return 1
	}

	registry := indicators.NewRegistry()
	indicators.RegisterBuiltins(registry)

	strategies = validateStrategies(logger, registry, strategies)
	if len(strategies) == 0 {
		logger.Error("no valid strategies to backtest")
		return 1
	}

	backtestCfg := backtestConfigFromRun(cfg)
	if err := backtestCfg.Validate(); err != nil {
		logger.Error("invalid backtest config", zap.Error(err))
		return 1
	}

	filters := batch.Filters{
		MinTrades:   cfg.MinTrades,
		MinWinRate:  cfg.MinWinRate,
		MinSharpe:   cfg.MinSharpe,
		MinReturn:   cfg.MinReturn,
		MaxDrawdown: cfg.MaxDrawdown,
	}

	store := api.NewStore()
	hub := store.Hub(runID)
	onProgress := func(completed, total int, name string, elapsed time.Duration) {
		api.StrategiesProcessedTotal.Inc()
		api.StrategyDurationSeconds.Observe(elapsed.Seconds())
		hub.Publish(api.ProgressFrame{
			Completed:       completed,
			Total:           total,
			CurrentStrategy: name,
			ElapsedMs:       elapsed.Milliseconds(),
		})
		if completed%100 == 0 || completed == total {
			logger.Info("screening progress", zap.Int("completed", completed), zap.Int("total", total))
		}
	}

	batchStart := time.Now()
	// topN 0 keeps every survivor so the passed-filters count is known
	// before truncating to the top N.
	ranked, err := batch.Run(logger, table, strategies, registry, backtestCfg, filters, cfg.ScoreWeights, 0, onProgress)
	api.BatchDurationSeconds.Observe(time.Since(batchStart).Seconds())
	if err != nil {
		logger.Error("batch run failed", zap.Error(err))
		return 1
	}
	passedFilters := len(ranked)
	if cfg.TopN > 0 && cfg.TopN < len(ranked) {
		ranked = ranked[:cfg.TopN]
	}

	repo := persist.NewMemoryRepository()
	for _, r := range ranked {
		if _, err := repo.Insert(r.Result); err != nil {
			logger.Warn("failed to persist result", zap.String("strategy", r.Result.StrategyName), zap.Error(err))
		}
	}

	report := api.BuildReport(runID, filters, normalizedWeights(cfg.ScoreWeights), len(strategies), passedFilters, ranked)
	store.Put(runID, report)

	if err := writeReport(cfg.OutputPath, report); err != nil {
		logger.Error("failed to write report", zap.Error(err))
		return 1
	}

	logger.Info("screening run complete",
		zap.String("run_id", runID),
		zap.Int("total_backtested", len(strategies)),
		zap.Int("top_selected", len(ranked)),
	)

	if !cfg.Serve {
		return 0
	}
	return serveResults(logger, cfg, store, repo)
}

func validateStrategies(logger *zap.Logger, registry *indicators.Registry, strategies []*types.StrategyAST) []*types.StrategyAST {
	validator := ast.NewValidator(registry)
	out := make([]*types.StrategyAST, 0, len(strategies))
	for _, s := range strategies {
		report := validator.Validate(s)
		if !report.OK() {
			logger.Warn("rejecting invalid strategy", zap.String("strategy", s.Name), zap.Strings("errors", report.Errors))
			continue
		}
		for _, w := range report.Warnings {
			logger.Warn("strategy quality warning", zap.String("strategy", s.Name), zap.String("warning", w))
		}
		out = append(out, s)
	}
	return out
}

func backtestConfigFromRun(cfg config.RunConfig) types.BacktestConfig {
	return types.BacktestConfig{
		InitialBalance:      cfg.InitialBalance,
		CommissionRate:      cfg.CommissionRate,
		SlippageBps:         cfg.SlippageBps,
		MaxPositions:        cfg.MaxPositions,
		RiskPerTrade:        cfg.RiskPerTrade,
		StopLossPercent:     cfg.StopLossPercent,
		TakeProfitPercent:   cfg.TakeProfitPercent,
		PositionSizePercent: cfg.PositionSizePercent,
	}
}

// normalizedWeights mirrors batch's internal normalization so the
// published report's "config" object reflects the weights actually
// used for ranking, not the caller's raw input.
func normalizedWeights(w [5]float64) [5]float64 {
	sum := 0.0
	for _, x := range w {
		sum += x
	}
	if sum <= 0 {
		return batch.DefaultWeights
	}
	out := [5]float64{}
	for i, x := range w {
		out[i] = x / sum
	}
	return out
}

func writeReport(path string, report api.RunReport) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if path == "" {
		_, err := os.Stdout.Write(append(b, '\n'))
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func serveResults(logger *zap.Logger, cfg config.RunConfig, store *api.Store, repo *persist.MemoryRepository) int {
	serverCfg := api.DefaultServerConfig()
	if cfg.APIAddr != "" {
		host, port, err := splitHostPort(cfg.APIAddr)
		if err == nil {
			serverCfg.Host, serverCfg.Port = host, port
		}
	}
	server := api.NewServer(logger, serverCfg, store, repo)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("results API error", zap.Error(err))
		}
	}()

	<-sigChan
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
		return 1
	}
	return 0
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}
