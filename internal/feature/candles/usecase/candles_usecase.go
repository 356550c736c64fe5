// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock_backtest/internal/feature/candles/domain"
	"stock_backtest/internal/feature/candles/domain/entity"
)

const (
	// DefaultInterval はローソク足クエリのデフォルト時間間隔です。
	DefaultInterval = "1day"
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 200
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 5000
)

// CandleRepository はローソク足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// Find は最新 outputsize 件を新しい順に返します。
	Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	// FindRange は [from, to] の範囲を古い順に返します。
	FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
	// UpsertBatch は (symbol, interval, time) をキーに一括で挿入または更新します。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// candlesUsecase はローソク足データ操作のユースケースを定義します。
type candlesUsecase struct {
	candle CandleRepository
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(candle CandleRepository) *candlesUsecase {
	return &candlesUsecase{candle: candle}
}

// GetCandles は指定された銘柄と時間間隔の最新 outputsize 件を新しい順に取得します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}

	return cu.candle.Find(ctx, strings.ToUpper(symbol), interval, outputsize)
}

// GetCandlesRange は [from, to] のローソク足を古い順に取得します。
// バックテストが参照するのと同じ系列（limit_up 付き）を確認する用途です。
func (cu *candlesUsecase) GetCandlesRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	if interval == "" {
		interval = DefaultInterval
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is before %s", domain.ErrInvalidRange,
			to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	return cu.candle.FindRange(ctx, strings.ToUpper(symbol), interval, from, to)
}
