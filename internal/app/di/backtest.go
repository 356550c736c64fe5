package di

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	backtestadapters "stock_backtest/internal/feature/backtest/adapters"
	backtesthandler "stock_backtest/internal/feature/backtest/transport/handler"
	backtestusecase "stock_backtest/internal/feature/backtest/usecase"
	candlesadapters "stock_backtest/internal/feature/candles/adapters"
	candleshandler "stock_backtest/internal/feature/candles/transport/handler"
	candlesusecase "stock_backtest/internal/feature/candles/usecase"
	symbollistadapters "stock_backtest/internal/feature/symbollist/adapters"
	symbollisthandler "stock_backtest/internal/feature/symbollist/transport/handler"
	symbollistusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/cache"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/metrics"
)

// candleCacheNamespace は日足キャッシュのRedisキー接頭辞です。
const candleCacheNamespace = "candles"

// Models はマイグレーション対象の全モデルを返します。
func Models() []any {
	models := []any{&candlesadapters.CandleModel{}, &symbollistadapters.SymbolModel{}}
	return append(models, backtestadapters.Models()...)
}

// NewCandleRepository はRedisキャッシュでラップした CandleRepository を返します。
// rdb が nil の場合はキャッシュせずにDBへ委譲します。
func NewCandleRepository(db *gorm.DB, rdb *redis.Client) *cache.CachingCandleRepository {
	return cache.NewCachingCandleRepository(rdb, 0, candlesadapters.NewCandleRepository(db), candleCacheNamespace).
		WithRefreshTTL(time.Now)
}

// NewBacktestUsecase はDB・キャッシュ・メトリクスを結線したバックテストユースケースを生成します。
func NewBacktestUsecase(db *gorm.DB, rdb *redis.Client, cfg config.StrategyConfig, logger *slog.Logger) *backtestusecase.BacktestUsecase {
	bars := backtestadapters.NewCandleBarSource(NewCandleRepository(db, rdb))
	symbols := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db))
	runs := backtestadapters.NewRunRepository(db)
	return backtestusecase.NewBacktestUsecase(bars, symbols, runs, metrics.NewBacktestRecorder(), cfg.Workers, logger)
}

// Handlers はルーターに登録するフィーチャーハンドラーの一式です。
type Handlers struct {
	Candles   *candleshandler.CandlesHandler
	Symbols   *symbollisthandler.SymbolHandler
	Backtests *backtesthandler.BacktestHandler
}

// NewHandlers は全フィーチャーのハンドラーを生成します。
func NewHandlers(db *gorm.DB, rdb *redis.Client, cfg config.Config, logger *slog.Logger) Handlers {
	candleRepo := NewCandleRepository(db, rdb)
	symbolUC := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db))

	return Handlers{
		Candles:   candleshandler.NewCandlesHandler(candlesusecase.NewCandlesUsecase(candleRepo)),
		Symbols:   symbollisthandler.NewSymbolHandler(symbolUC),
		Backtests: backtesthandler.NewBacktestHandler(NewBacktestUsecase(db, rdb, cfg.Strategy, logger), cfg.Strategy.Params),
	}
}
