package adapters

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/usecase"
	candleentity "stock_backtest/internal/feature/candles/domain/entity"
	candlesusecase "stock_backtest/internal/feature/candles/usecase"
)

// csvDateLayouts covers ISO dates and the compact trade_date of common A-share exports.
var csvDateLayouts = []string{time.DateOnly, "20060102"}

type csvBarSource struct {
	dir       string
	threshold float64
}

var _ usecase.BarRepository = (*csvBarSource)(nil)

// NewCSVBarSource reads daily bars from <dir>/<symbol>.csv.
// Files without a limit_up (or up_limit) column are marked with threshold (<= 0 uses the ingest default).
func NewCSVBarSource(dir string, threshold float64) *csvBarSource {
	if threshold <= 0 {
		threshold = candlesusecase.DefaultLimitUpThreshold
	}
	return &csvBarSource{dir: dir, threshold: threshold}
}

// LoadBars parses the whole file, sorts it ascending, marks limit-up days and
// returns the bars in [from, to]. A missing file wraps domain.ErrNoBars.
func (s *csvBarSource) LoadBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoBars, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	candles, hasLimitUp, err := readCandles(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	slices.SortFunc(candles, func(a, b candleentity.Candle) int { return a.Time.Compare(b.Time) })
	if !hasLimitUp {
		candlesusecase.MarkLimitUp(candles, 0, s.threshold)
	}

	bars := make([]entity.Bar, 0, len(candles))
	for _, c := range candles {
		if c.Time.Before(from) || c.Time.After(to) {
			continue
		}
		bars = append(bars, ToBar(c))
	}
	return bars, nil
}

// readCandles decodes a header-led CSV. UTF-8 and UTF-16 byte order marks are stripped.
func readCandles(r io.Reader, symbol string) ([]candleentity.Candle, bool, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, false, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := firstColumn(col, "date", "trade_date")
	if !ok {
		return nil, false, errors.New("missing date column")
	}
	for _, name := range []string{"open", "high", "low", "close"} {
		if _, ok := col[name]; !ok {
			return nil, false, fmt.Errorf("missing %s column", name)
		}
	}
	volCol, hasVol := firstColumn(col, "volume", "vol")
	limitCol, hasLimitUp := firstColumn(col, "limit_up", "up_limit")

	var out []candleentity.Candle
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}

		c := candleentity.Candle{Symbol: symbol, Interval: dailyInterval}
		if c.Time, err = parseCSVDate(rec[dateCol]); err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}
		prices := []*float64{&c.Open, &c.High, &c.Low, &c.Close}
		for i, name := range []string{"open", "high", "low", "close"} {
			if *prices[i], err = strconv.ParseFloat(strings.TrimSpace(rec[col[name]]), 64); err != nil {
				return nil, false, fmt.Errorf("line %d: parse %s: %w", line, name, err)
			}
		}
		if hasVol {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[volCol]), 64)
			if err != nil {
				return nil, false, fmt.Errorf("line %d: parse volume: %w", line, err)
			}
			c.Volume = int64(v)
		}
		if hasLimitUp {
			if c.LimitUp, err = parseFlag(rec[limitCol]); err != nil {
				return nil, false, fmt.Errorf("line %d: parse limit_up: %w", line, err)
			}
		}
		out = append(out, c)
	}
	return out, hasLimitUp, nil
}

func firstColumn(col map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := col[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// parseFlag accepts true/false spellings and numeric flags such as 1, 0 or 1.0.
func parseFlag(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, fmt.Errorf("invalid flag %q", s)
	}
	return f != 0, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
