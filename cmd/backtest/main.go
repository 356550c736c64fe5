package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"stock_backtest/internal/app/di"
	backtestadapters "stock_backtest/internal/feature/backtest/adapters"
	"stock_backtest/internal/feature/backtest/domain/entity"
	backtestusecase "stock_backtest/internal/feature/backtest/usecase"
	symbollistadapters "stock_backtest/internal/feature/symbollist/adapters"
	symbollistusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"
	"stock_backtest/internal/platform/metrics"
	infraredis "stock_backtest/internal/platform/redis"
)

// decimalFlag lets -profit-target=0.08 and friends override decimal parameters.
type decimalFlag struct{ d *decimal.Decimal }

func (f decimalFlag) String() string {
	if f.d == nil {
		return ""
	}
	return f.d.String()
}

func (f decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*f.d = v
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}
	cfg := config.Load()
	p := cfg.Strategy.Params

	symbols := flag.String("symbols", "", "comma separated codes; empty tests every active symbol")
	start := flag.String("start", "", "first evaluated day, YYYY-MM-DD (required)")
	end := flag.String("end", "", "last evaluated day, YYYY-MM-DD (default today)")
	csvDir := flag.String("csv-dir", "", "read <code>.csv files from this directory instead of the database; results are not stored")
	strategy := flag.String("strategy", backtestusecase.DefaultStrategyName, "strategy name stored on the run")
	workers := flag.Int("workers", cfg.Strategy.Workers, "instruments simulated concurrently")
	showTrades := flag.Bool("trades", false, "print every closed trade")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Var(decimalFlag{&p.ProfitTarget}, "profit-target", "take-profit return, e.g. 0.10")
	flag.Var(decimalFlag{&p.StopLoss}, "stop-loss", "stop-loss return magnitude, e.g. 0.05")
	flag.IntVar(&p.MaxHoldDays, "max-hold-days", p.MaxHoldDays, "bars held before a timeout exit")
	flag.IntVar(&p.LookbackDays, "lookback-days", p.LookbackDays, "bars before the limit-up run used for the buy price")
	flag.IntVar(&p.MaxWaitDays, "max-wait-days", p.MaxWaitDays, "calendar days a buy target stays live")
	flag.Var(decimalFlag{&p.PositionPct}, "position-pct", "fraction of cash per entry")
	flag.Var(decimalFlag{&p.CommissionRate}, "commission-rate", "commission per side")
	flag.Var(decimalFlag{&p.InitialCapital}, "initial-capital", "cash per instrument")
	flag.Int64Var(&p.LotSize, "lot-size", p.LotSize, "share quantity multiple")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "invalid -log-level:", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	req, err := buildRequest(*strategy, *symbols, *start, *end, p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Strategy.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Strategy.RunTimeout)
		defer cancel()
	}

	var uc *backtestusecase.BacktestUsecase
	if *csvDir != "" {
		uc = backtestusecase.NewBacktestUsecase(
			backtestadapters.NewCSVBarSource(*csvDir, cfg.Strategy.LimitUpThreshold),
			symbollistusecase.NewSymbolUsecase(symbollistadapters.NewDirSymbolRepository(*csvDir)),
			nil,
			metrics.NewBacktestRecorder(),
			*workers,
			logger,
		)
	} else {
		gdb, err := db.OpenDB(cfg.Database, di.Models()...)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		var rdb *redisv9.Client
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err == nil {
			rdb = tmp
			defer rdb.Close()
		}
		cfg.Strategy.Workers = *workers
		uc = di.NewBacktestUsecase(gdb, rdb, cfg.Strategy, logger)
	}

	run, err := uc.Run(ctx, req)
	if err != nil {
		slog.Error("backtest failed", "error", err)
		os.Exit(1)
	}
	if err := writeReport(os.Stdout, run, *showTrades); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}

func buildRequest(strategy, symbols, start, end string, p entity.Params) (backtestusecase.Request, error) {
	if start == "" {
		return backtestusecase.Request{}, errors.New("-start is required")
	}
	req := backtestusecase.Request{
		StrategyName: strategy,
		Symbols:      parseSymbols(symbols),
		Params:       p,
	}
	var err error
	if req.Start, err = parseDay("start", start); err != nil {
		return backtestusecase.Request{}, err
	}
	if end != "" {
		if req.End, err = parseDay("end", end); err != nil {
			return backtestusecase.Request{}, err
		}
	}
	return req, nil
}

func parseSymbols(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseDay(name, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s must be YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}
