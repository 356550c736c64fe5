package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/shared/ratelimiter"
)

const (
	ingestOutputSize = 200 // 1回のリクエストで取得するデータ件数
	// seedLookbackDays は limit-up 判定の前日終値を探す範囲です（連休を跨げる長さ）。
	seedLookbackDays = 14
)

// ingestIntervals はデータ取得の対象となる時間足のリストです。
var ingestIntervals = []string{"1day", "1week", "1month"}

// MarketRepository は株価データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
}

// IngestUsecase は外部APIからデータを取得し、limit-up を判定してデータベースに永続化します。
type IngestUsecase struct {
	market           MarketRepository
	candle           CandleRepository
	limiter          ratelimiter.Limiter
	limitUpThreshold float64
}

// NewIngestUsecase は新しい IngestUsecase を作成します。threshold <= 0 は DefaultLimitUpThreshold を使います。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, limiter ratelimiter.Limiter, threshold float64) *IngestUsecase {
	if threshold <= 0 {
		threshold = DefaultLimitUpThreshold
	}
	return &IngestUsecase{market: market, candle: candle, limiter: limiter, limitUpThreshold: threshold}
}

// ingestOne は1銘柄・1時間足の時系列を取得し、日足なら limit-up を付与して一括 upsert します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, interval string, outputsize int) error {
	cs, err := iu.market.GetTimeSeries(ctx, symbol, interval, outputsize)
	if err != nil {
		return err
	}
	if len(cs) == 0 {
		return nil
	}

	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = interval
	}
	slices.SortFunc(cs, func(a, b entity.Candle) int { return a.Time.Compare(b.Time) })

	if interval == DefaultInterval {
		prev, err := iu.previousClose(ctx, symbol, interval, cs[0])
		if err != nil {
			return err
		}
		MarkLimitUp(cs, prev, iu.limitUpThreshold)
	}
	return iu.candle.UpsertBatch(ctx, cs)
}

// previousClose は first より前に保存済みの直近終値を返します。無ければ 0 です。
func (iu *IngestUsecase) previousClose(ctx context.Context, symbol, interval string, first entity.Candle) (float64, error) {
	from := first.Time.AddDate(0, 0, -seedLookbackDays)
	to := first.Time.Add(-1)
	stored, err := iu.candle.FindRange(ctx, symbol, interval, from, to)
	if err != nil {
		return 0, fmt.Errorf("load previous close for %s: %w", symbol, err)
	}
	if len(stored) == 0 {
		return 0, nil
	}
	return stored[len(stored)-1].Close, nil
}

// IngestAll は全銘柄の時系列を日足・週足・月足で取得して永続化します。
// 1銘柄の失敗はログに残して続行し、ctx が終了した場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	for _, s := range symbols {
		for _, interval := range ingestIntervals {
			if err := iu.limiter.Wait(ctx); err != nil {
				return err
			}
			if err := iu.ingestOne(ctx, s, interval, ingestOutputSize); err != nil {
				slog.Error("failed to ingest data", "symbol", s, "interval", interval, "error", err)
				continue
			}
		}
	}
	return nil
}
