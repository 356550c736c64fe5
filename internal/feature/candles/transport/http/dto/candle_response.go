// Package dto はcandlesフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import (
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
)

// CandleResponse はロウソク足データのレスポンスDTOです。
type CandleResponse struct {
	Time    string  `json:"time"`     // 日付
	Open    float64 `json:"open"`     // 始値
	High    float64 `json:"high"`     // 高値
	Low     float64 `json:"low"`      // 安値
	Close   float64 `json:"close"`    // 終値
	Volume  int64   `json:"volume"`   // 出来高
	LimitUp bool    `json:"limit_up"` // ストップ高
}

// NewCandleResponse は日付を UTC の YYYY-MM-DD に整形して変換します。
func NewCandleResponse(c entity.Candle) CandleResponse {
	return CandleResponse{
		Time:    c.Time.UTC().Format(time.DateOnly),
		Open:    c.Open,
		High:    c.High,
		Low:     c.Low,
		Close:   c.Close,
		Volume:  c.Volume,
		LimitUp: c.LimitUp,
	}
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
