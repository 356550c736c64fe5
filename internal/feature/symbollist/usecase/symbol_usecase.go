// Package usecase implements the business logic for symbol-related operations.
package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"stock_backtest/internal/feature/symbollist/domain"
	"stock_backtest/internal/feature/symbollist/domain/entity"
)

var codePattern = regexp.MustCompile(`^\d{6}\.(SH|SZ)$`)

// SymbolRepository abstracts the persistence layer for symbol data.
type SymbolRepository interface {
	ListActive(ctx context.Context, market string) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// SymbolWriter persists symbols into the universe.
type SymbolWriter interface {
	UpsertBatch(ctx context.Context, symbols []entity.Symbol) error
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns active symbols, optionally restricted to one market ("SH" or "SZ").
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context, market string) ([]entity.Symbol, error) {
	market = strings.ToUpper(strings.TrimSpace(market))
	if market != "" && market != "SH" && market != "SZ" {
		return nil, fmt.Errorf("%w: unknown market %q", domain.ErrInvalidSymbol, market)
	}
	return u.repo.ListActive(ctx, market)
}

// ResolveUniverse normalizes the requested codes (trim, upper-case, dedupe in order).
// An empty request resolves to every active symbol.
func (u *SymbolUsecase) ResolveUniverse(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		codes, err := u.repo.ListActiveCodes(ctx)
		if err != nil {
			return nil, fmt.Errorf("list active symbols: %w", err)
		}
		return codes, nil
	}

	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, raw := range requested {
		code := NormalizeCode(raw)
		if code == "" {
			continue
		}
		if !codePattern.MatchString(code) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, raw)
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no symbols given", domain.ErrInvalidSymbol)
	}
	return out, nil
}

// RegisterSymbols upserts codes as active symbols so that later runs without an
// explicit symbol list pick them up. The position in codes becomes the sort key.
func RegisterSymbols(ctx context.Context, w SymbolWriter, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	symbols := make([]entity.Symbol, 0, len(codes))
	for i, raw := range codes {
		code := NormalizeCode(raw)
		if !codePattern.MatchString(code) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, raw)
		}
		symbols = append(symbols, entity.Symbol{
			Code:     code,
			Name:     code,
			Market:   code[strings.LastIndex(code, ".")+1:],
			IsActive: true,
			SortKey:  i,
		})
	}
	if err := w.UpsertBatch(ctx, symbols); err != nil {
		return fmt.Errorf("register symbols: %w", err)
	}
	return nil
}

// NormalizeCode trims and upper-cases a symbol code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
