// Package adapters はcandlesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
)

type candleGorm struct {
	db *gorm.DB
}

var _ usecase.CandleRepository = (*candleGorm)(nil)

// NewCandleRepository は gorm 接続を使う CandleRepository を返します。
func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

// CandleModel is the row layout of the candles table.
type CandleModel struct {
	ID       uint      `gorm:"primaryKey"`
	Symbol   string    `gorm:"size:32;not null;uniqueIndex:candle_sym_int_time,priority:1"`
	Interval string    `gorm:"size:16;not null;uniqueIndex:candle_sym_int_time,priority:2"`
	Time     time.Time `gorm:"not null;uniqueIndex:candle_sym_int_time,priority:3"`

	Open    float64 `gorm:"not null"`
	High    float64 `gorm:"not null"`
	Low     float64 `gorm:"not null"`
	Close   float64 `gorm:"not null"`
	Volume  int64   `gorm:"not null;default:0"`
	LimitUp bool    `gorm:"not null;default:false"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Symbol:   e.Symbol,
		Interval: e.Interval,
		Time:     e.Time,
		Open:     e.Open,
		High:     e.High,
		Low:      e.Low,
		Close:    e.Close,
		Volume:   e.Volume,
		LimitUp:  e.LimitUp,
	}
}

func toEntity(m CandleModel) entity.Candle {
	return entity.Candle{
		Symbol:   m.Symbol,
		Interval: m.Interval,
		Time:     m.Time,
		Open:     m.Open,
		High:     m.High,
		Low:      m.Low,
		Close:    m.Close,
		Volume:   m.Volume,
		LimitUp:  m.LimitUp,
	}
}

// seriesScope filters rows of one symbol and interval. Columns are quoted by the
// dialect because "interval" is a keyword in PostgreSQL.
func seriesScope(symbol, interval string) clause.Expression {
	return clause.And(
		clause.Eq{Column: clause.Column{Name: "symbol"}, Value: symbol},
		clause.Eq{Column: clause.Column{Name: "interval"}, Value: interval},
	)
}

// UpsertBatch inserts candles, overwriting prices and the limit-up flag on (symbol, interval, time) conflicts.
func (r *candleGorm) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "limit_up"}),
	}).Create(&ms).Error
	if err != nil {
		return fmt.Errorf("upsert %d candles: %w", len(ms), err)
	}
	return nil
}

// Find は最新の outputsize 件を新しい順に返します。outputsize <= 0 は全件です。
func (r *candleGorm) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Clauses(clause.Where{Exprs: []clause.Expression{seriesScope(symbol, interval)}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "time"}, Desc: true})
	if outputsize > 0 {
		q = q.Limit(outputsize)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// FindRange は [from, to] の範囲を古い順に返します。
func (r *candleGorm) FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	var rows []CandleModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Where{Exprs: []clause.Expression{
			seriesScope(symbol, interval),
			clause.Gte{Column: clause.Column{Name: "time"}, Value: from},
			clause.Lte{Column: clause.Column{Name: "time"}, Value: to},
		}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "time"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
