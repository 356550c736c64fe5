// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_backtest/internal/feature/candles/domain"
	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/transport/http/dto"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	GetCandlesRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc  CandlesUsecase
	now func() time.Time
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc, now: time.Now}
}

// GetCandlesHandler は銘柄コードと時間間隔を受け取り、ローソク足データをJSONで返します。
// from か to があれば期間指定（古い順）、なければ最新 outputsize 件（新しい順）です。
//
// エンドポイント例:
// GET /candles/:code?interval=1day&outputsize=200
// GET /candles/:code?from=2025-01-01&to=2025-06-30
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	interval := c.DefaultQuery("interval", "1day")

	var (
		candles []entity.Candle
		err     error
	)
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, perr := h.parseRange(c.Query("from"), c.Query("to"))
		if perr != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: perr.Error()})
			return
		}
		candles, err = h.uc.GetCandlesRange(c.Request.Context(), code, interval, from, to)
	} else {
		// 不正な値は 0 になり、usecase 側でデフォルトに置き換わる
		outputsize, _ := strconv.Atoi(c.DefaultQuery("outputsize", "200"))
		candles, err = h.uc.GetCandles(c.Request.Context(), code, interval, outputsize)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.NewCandleResponse(x))
	}

	c.JSON(http.StatusOK, out)
}

// parseRange は YYYY-MM-DD を解釈します。from 省略時は時刻ゼロ、to 省略時は今日です。
func (h *CandlesHandler) parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	var from time.Time
	to := h.now().UTC().Truncate(24 * time.Hour)
	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.DateOnly, fromStr); err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.DateOnly, toStr); err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
	}
	return from, to, nil
}
