package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
	"stock_backtest/internal/platform/externalapi/twelvedata/dto"
)

// exchanges maps exchange suffixes of A-share codes to Twelve Data exchange names.
var exchanges = map[string]string{
	"SH": "SSE",
	"SZ": "SZSE",
}

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// splitCode turns "600000.SH" into ("600000", "SSE"). Codes without a known suffix pass through unchanged.
func splitCode(code string) (symbol, exchange string) {
	base, suffix, ok := strings.Cut(code, ".")
	if !ok {
		return code, ""
	}
	if ex, known := exchanges[strings.ToUpper(suffix)]; known {
		return base, ex
	}
	return code, ""
}

// GetTimeSeries はTwelve Data APIから時系列を取得し、古い順の Candle として返します。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, code, interval string, outputsize int) ([]entity.Candle, error) {
	symbol, exchange := splitCode(code)

	q := url.Values{}
	q.Set("symbol", symbol)
	if exchange != "" {
		q.Set("exchange", exchange)
	}
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d for %s", res.StatusCode, code)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode time series for %s: %w", code, err)
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		c, err := toCandle(v)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", code, v.Datetime, err)
		}
		c.Symbol = code
		c.Interval = interval
		candles = append(candles, c)
	}
	// the API answers newest first
	slices.SortFunc(candles, func(a, b entity.Candle) int { return a.Time.Compare(b.Time) })
	return candles, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, time.DateOnly} {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q: unsupported layout", s)
}

func toCandle(v dto.TimeSeriesValue) (entity.Candle, error) {
	tm, err := parseDatetime(v.Datetime)
	if err != nil {
		return entity.Candle{}, err
	}

	names := [4]string{"open", "high", "low", "close"}
	raw := [4]string{v.Open, v.High, v.Low, v.Close}
	var px [4]float64
	for i := range raw {
		px[i], err = strconv.ParseFloat(raw[i], 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse %s %q: %w", names[i], raw[i], err)
		}
	}

	// index and some exchange feeds omit volume
	var vol int64
	if v.Volume != "" {
		vol, err = strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}

	return entity.Candle{
		Time:   tm,
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: vol,
	}, nil
}
