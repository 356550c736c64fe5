// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_backtest/internal/feature/symbollist/domain/entity"
	"stock_backtest/internal/feature/symbollist/usecase"
)

// SymbolModel は symbols テーブルのGORMモデルです。
type SymbolModel struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:10;not null;index"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName はテーブル名を返します。
func (SymbolModel) TableName() string { return "symbols" }

func (m SymbolModel) toEntity() entity.Symbol {
	return entity.Symbol{
		Code:     m.Code,
		Name:     m.Name,
		Market:   m.Market,
		IsActive: m.IsActive,
		SortKey:  m.SortKey,
	}
}

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var (
	_ usecase.SymbolRepository = (*symbolGorm)(nil)
	_ usecase.SymbolWriter     = (*symbolGorm)(nil)
)

// NewSymbolRepository は指定されたDB接続でリポジトリを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListActive はsort_key順にアクティブな銘柄を返します。market が空でなければその市場に絞り込みます。
func (r *symbolGorm) ListActive(ctx context.Context, market string) ([]entity.Symbol, error) {
	q := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "is_active"}, Value: true})
	if market != "" {
		q = q.Where(clause.Eq{Column: clause.Column{Name: "market"}, Value: market})
	}

	var rows []SymbolModel
	if err := q.Order("sort_key ASC, code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄コードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&SymbolModel{}).
		Where(clause.Eq{Column: clause.Column{Name: "is_active"}, Value: true}).
		Order("sort_key ASC, code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// UpsertBatch は code をキーに銘柄を挿入または更新します。
func (r *symbolGorm) UpsertBatch(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	rows := make([]SymbolModel, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, SymbolModel{
			Code:     s.Code,
			Name:     s.Name,
			Market:   s.Market,
			IsActive: s.IsActive,
			SortKey:  s.SortKey,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "market", "is_active", "sort_key", "updated_at"}),
	}).Create(&rows).Error
}
