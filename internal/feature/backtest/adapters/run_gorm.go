package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"
)

const insertBatchSize = 500

type runGorm struct {
	db *gorm.DB
}

var _ usecase.RunRepository = (*runGorm)(nil)

// NewRunRepository は gorm 接続を使う RunRepository を返します。
func NewRunRepository(db *gorm.DB) *runGorm {
	return &runGorm{db: db}
}

// Save は実行結果を1トランザクションで保存します。
func (r *runGorm) Save(ctx context.Context, run *entity.Run) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rm := toRunModel(run)
		if err := tx.Omit(clause.Associations).Create(&rm).Error; err != nil {
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}

		for i, ir := range run.Instruments {
			im := toInstrumentModel(run.ID, i, ir)
			if err := tx.Omit(clause.Associations).Create(&im).Error; err != nil {
				return fmt.Errorf("insert instrument %s: %w", ir.Symbol, err)
			}

			if len(ir.Trades) > 0 {
				trades := make([]TradeModel, 0, len(ir.Trades))
				for _, t := range ir.Trades {
					trades = append(trades, toTradeModel(im.ID, t))
				}
				if err := tx.CreateInBatches(&trades, insertBatchSize).Error; err != nil {
					return fmt.Errorf("insert trades %s: %w", ir.Symbol, err)
				}
			}

			if len(ir.Equity) > 0 {
				equity := make([]EquityModel, 0, len(ir.Equity))
				for _, e := range ir.Equity {
					equity = append(equity, EquityModel{InstrumentID: im.ID, Date: e.Date, TotalValue: e.TotalValue})
				}
				if err := tx.CreateInBatches(&equity, insertBatchSize).Error; err != nil {
					return fmt.Errorf("insert equity %s: %w", ir.Symbol, err)
				}
			}
		}
		return nil
	})
}

// FindByID は銘柄別の結果・取引・資産推移を含めて1件返します。
func (r *runGorm) FindByID(ctx context.Context, id string) (*entity.Run, error) {
	var m RunModel
	err := r.db.WithContext(ctx).
		Preload("Instruments", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "seq"}})
		}).
		Preload("Instruments.Trades", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}).
		Preload("Instruments.Equity", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}})
		}).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

// List は新しい順に最大 limit 件を返します。銘柄別の結果は含みません。
func (r *runGorm) List(ctx context.Context, limit int) ([]entity.Run, error) {
	var rows []RunModel
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Run, 0, len(rows))
	for _, m := range rows {
		out = append(out, *m.toEntity())
	}
	return out, nil
}
