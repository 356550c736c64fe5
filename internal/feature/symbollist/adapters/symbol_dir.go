package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"stock_backtest/internal/feature/symbollist/domain/entity"
	"stock_backtest/internal/feature/symbollist/usecase"
)

// symbolDir はCSVディレクトリのファイル名 (<code>.csv) を銘柄一覧として扱うリポジトリです。
type symbolDir struct {
	dir string
}

var _ usecase.SymbolRepository = (*symbolDir)(nil)

// NewDirSymbolRepository は dir 直下の *.csv を有効銘柄とするリポジトリを返します。
func NewDirSymbolRepository(dir string) *symbolDir {
	return &symbolDir{dir: dir}
}

// ListActive はコード順に銘柄を返します。名前はファイルから分からないためコードと同じです。
func (r *symbolDir) ListActive(ctx context.Context, market string) ([]entity.Symbol, error) {
	codes, err := r.ListActiveCodes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Symbol, 0, len(codes))
	for i, code := range codes {
		m := marketOf(code)
		if market != "" && m != market {
			continue
		}
		out = append(out, entity.Symbol{Code: code, Name: code, Market: m, IsActive: true, SortKey: i})
	}
	return out, nil
}

// ListActiveCodes は大文字化したコードを昇順で返します。ファイル名はコードと同じ大文字小文字にしてください。
func (r *symbolDir) ListActiveCodes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read symbol dir: %w", err)
	}
	var codes []string
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if e.IsDir() || !strings.EqualFold(ext, ".csv") {
			continue
		}
		codes = append(codes, usecase.NormalizeCode(strings.TrimSuffix(name, ext)))
	}
	slices.Sort(codes)
	return codes, nil
}

func marketOf(code string) string {
	if i := strings.LastIndexByte(code, '.'); i >= 0 {
		return code[i+1:]
	}
	return ""
}
