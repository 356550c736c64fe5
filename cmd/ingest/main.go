package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_backtest/internal/app/di"
	candlesusecase "stock_backtest/internal/feature/candles/usecase"
	symbollistadapters "stock_backtest/internal/feature/symbollist/adapters"
	symbollistusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"
	infraredis "stock_backtest/internal/platform/redis"
	"stock_backtest/internal/shared/ratelimiter"
)

func main() {
	symbols := flag.String("symbols", "", "comma separated codes such as 600000.SH; empty ingests every active symbol")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall ingest deadline")
	perMinute := flag.Int("rate", 8, "maximum Twelve Data requests per minute")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gdb, err := db.OpenDB(cfg.Database, di.Models()...)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// 取り込み後にキャッシュを無効化するため、Redisが使えればラップする
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err == nil {
		rdb = tmp
		defer rdb.Close()
	}

	symbolRepo := symbollistadapters.NewSymbolRepository(gdb)
	requested := splitCodes(*symbols)
	codes, err := symbollistusecase.NewSymbolUsecase(symbolRepo).ResolveUniverse(ctx, requested)
	if err != nil {
		slog.Error("failed to load symbols", "error", err)
		os.Exit(1)
	}
	// 明示指定された銘柄は有効銘柄として登録し、以降の全銘柄バックテストの対象にする
	if len(requested) > 0 {
		if err := symbollistusecase.RegisterSymbols(ctx, symbolRepo, codes); err != nil {
			slog.Error("failed to register symbols", "error", err)
			os.Exit(1)
		}
	}

	uc := candlesusecase.NewIngestUsecase(
		di.NewMarket(cfg.Market),
		di.NewCandleRepository(gdb, rdb),
		ratelimiter.NewRateLimiter(*perMinute, time.Minute),
		cfg.Strategy.LimitUpThreshold,
	)

	started := time.Now()
	if err := uc.IngestAll(ctx, codes); err != nil {
		slog.Error("ingest aborted", "error", err, "elapsed", time.Since(started))
		os.Exit(1)
	}
	slog.Info("ingest ok", "symbols", len(codes), "elapsed", time.Since(started))
}

func splitCodes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
