package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quantlab/internal/collector"
	"quantlab/internal/config"
	"quantlab/internal/engine"
	"quantlab/internal/report"
	"quantlab/internal/repository"
	"quantlab/internal/resultstore"
	"quantlab/strategies/macross"
	"quantlab/strategies/rsirev"
	"quantlab/types"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		tickers    = flag.String("ticker", "", "comma-separated tickers to backtest")
		strategy   = flag.String("strategy", "ma-cross", "strategy key")
		params     = flag.String("params", "", "strategy params as k=v,k=v")
		interval   = flag.String("interval", "D", "bar interval: 60, D or W")
		startFlag  = flag.String("start", "", "range start (2006-01-02)")
		endFlag    = flag.String("end", "", "range end (2006-01-02), defaults to today")
		source     = flag.String("source", "yahoo", "candle source: db, yahoo or csv")
		workers    = flag.Int("workers", 0, "concurrent backtests, 0 = NumCPU")
		save       = flag.Bool("save", false, "persist results to the run store")
		tradesCSV  = flag.String("export-trades", "", "write the trade log CSV to this path")
		listFlag   = flag.Bool("list", false, "list available strategies and exit")
		runsFlag   = flag.Int("runs", 0, "show the N most recent stored runs and exit")
		verbose    = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg, *verbose)
	slog.SetDefault(logger)

	reg := engine.NewRegistry()
	mustRegister(reg, "ma-cross", macross.New)
	mustRegister(reg, "rsi-rev", rsirev.New)

	console := report.NewConsole(os.Stdout)

	if *listFlag {
		for _, key := range reg.List() {
			fmt.Println(key)
		}
		return
	}

	if *runsFlag > 0 {
		store, err := resultstore.New(cfg.Results.SQLitePath)
		if err != nil {
			fatal(logger, "open run store", err)
		}
		defer store.Close()
		runs, err := store.ListRuns(context.Background(), *runsFlag)
		if err != nil {
			fatal(logger, "list runs", err)
		}
		console.PrintRuns(runs)
		return
	}

	if *tickers == "" {
		fmt.Fprintln(os.Stderr, "at least one -ticker is required")
		flag.Usage()
		os.Exit(2)
	}

	iv, ok := types.ConvertInterval[*interval]
	if !ok {
		fatal(logger, "parse interval", fmt.Errorf("unknown interval %q", *interval))
	}
	start, end, err := parseRange(*startFlag, *endFlag)
	if err != nil {
		fatal(logger, "parse range", err)
	}
	stratParams, err := parseParams(*params)
	if err != nil {
		fatal(logger, "parse params", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed, cleanup, err := buildFeed(ctx, cfg, *source, iv)
	if err != nil {
		fatal(logger, "open candle source", err)
	}
	defer cleanup()

	eng, err := engine.New(cfg.SimConfig(), logger)
	if err != nil {
		fatal(logger, "engine", err)
	}

	var reqs []engine.BatchRequest
	for _, ticker := range strings.Split(*tickers, ",") {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			continue
		}
		reqs = append(reqs, engine.BatchRequest{
			Ticker:   ticker,
			Strategy: *strategy,
			Params:   stratParams,
			Interval: iv,
			Start:    start,
			End:      end,
		})
	}

	outcomes := eng.RunBatch(ctx, feed, reg, reqs, *workers)

	var store *resultstore.Store
	if *save {
		store, err = resultstore.New(cfg.Results.SQLitePath)
		if err != nil {
			fatal(logger, "open run store", err)
		}
		defer store.Close()
	}

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			if dataUnavailable(out.Err) {
				logger.Warn("no data for ticker, skipping",
					"ticker", out.Request.Ticker, "err", out.Err)
			} else {
				logger.Error("backtest failed",
					"ticker", out.Request.Ticker, "err", out.Err)
				failed++
			}
			continue
		}

		console.PrintSummary(out.Result)
		console.PrintTrades(out.Result)

		if store != nil {
			if err := store.SaveResult(ctx, out.Result); err != nil {
				logger.Error("save result", "run_id", out.Result.ID, "err", err)
				failed++
			}
		}
		if *tradesCSV != "" {
			if err := exportTrades(*tradesCSV, out.Result); err != nil {
				logger.Error("export trades", "ticker", out.Result.Ticker, "err", err)
				failed++
			}
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func mustRegister(reg *engine.Registry, key string, ctor engine.Constructor) {
	if err := reg.Register(key, ctor); err != nil {
		panic(err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

// buildFeed picks the candle source. The returned cleanup is always safe to
// call.
func buildFeed(ctx context.Context, cfg *config.Config, source string, interval types.Interval) (engine.Feed, func(), error) {
	switch source {
	case "db":
		if cfg.Database.URL == "" {
			return nil, func() {}, errors.New("database.url not configured")
		}
		db, err := repository.NewDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return nil, func() {}, err
		}
		return db, db.Close, nil
	case "yahoo":
		return collector.NewYahooCollector(cfg.Data.Proxy), func() {}, nil
	case "csv":
		return collector.NewCSVCollector(cfg.Data.CSVDir, interval), func() {}, nil
	}
	return nil, func() {}, fmt.Errorf("unknown source %q", source)
}

func parseRange(startFlag, endFlag string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if endFlag != "" {
		var err error
		end, err = time.Parse("2006-01-02", endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad -end: %w", err)
		}
	}

	start := end.AddDate(-2, 0, 0)
	if startFlag != "" {
		var err error
		start, err = time.Parse("2006-01-02", startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad -start: %w", err)
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start %s is not before end %s", start, end)
	}
	return start, end, nil
}

// parseParams turns "fast=10,ma_type=ema,filter=true" into typed params.
// Values parse as int, then float, then bool, falling back to string.
func parseParams(raw string) (engine.Params, error) {
	if raw == "" {
		return nil, nil
	}
	params := engine.Params{}
	for _, pair := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			return nil, fmt.Errorf("bad param %q, want k=v", pair)
		}
		switch {
		case isInt(value):
			n, _ := strconv.Atoi(value)
			params[key] = n
		case isFloat(value):
			f, _ := strconv.ParseFloat(value, 64)
			params[key] = f
		case value == "true" || value == "false":
			params[key] = value == "true"
		default:
			params[key] = value
		}
	}
	return params, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func dataUnavailable(err error) bool {
	return errors.Is(err, repository.ErrAssetNotFound) ||
		errors.Is(err, repository.ErrNoCandles) ||
		errors.Is(err, repository.ErrIntervalNotSupported) ||
		errors.Is(err, collector.ErrNoData)
}

func exportTrades(path string, res *types.BacktestResult) error {
	name := path
	if strings.Contains(name, "{ticker}") {
		name = strings.ReplaceAll(name, "{ticker}", res.Ticker)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteTradesCSV(f, res.Trades)
}
