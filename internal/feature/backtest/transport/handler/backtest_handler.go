// Package handler はbacktestフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/transport/http/dto"
	"stock_backtest/internal/feature/backtest/usecase"
)

// BacktestUsecase はバックテストのユースケースインターフェースです。
type BacktestUsecase interface {
	Run(ctx context.Context, req usecase.Request) (*entity.Run, error)
	Get(ctx context.Context, id string) (*entity.Run, error)
	List(ctx context.Context, limit int) ([]entity.Run, error)
}

// BacktestHandler はバックテストのHTTPリクエストを処理します。
type BacktestHandler struct {
	uc       BacktestUsecase
	defaults entity.Params
}

// NewBacktestHandler は defaults を上書きの基準にするハンドラーを返します。
func NewBacktestHandler(uc BacktestUsecase, defaults entity.Params) *BacktestHandler {
	return &BacktestHandler{uc: uc, defaults: defaults}
}

// Create は POST /backtests を処理します。パラメータ不正は400、成功時は201で結果全体を返します。
func (h *BacktestHandler) Create(c *gin.Context) {
	var body dto.RunRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	start, err := time.Parse(time.DateOnly, body.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	var end time.Time
	if body.EndDate != "" {
		if end, err = time.Parse(time.DateOnly, body.EndDate); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "end_date must be YYYY-MM-DD"})
			return
		}
	}

	run, err := h.uc.Run(c.Request.Context(), usecase.Request{
		StrategyName: body.StrategyName,
		Symbols:      body.Symbols,
		Start:        start,
		End:          end,
		Params:       body.Params.Apply(h.defaults),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidParams):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, dto.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("backtest run failed", "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "backtest failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.NewRunResponse(run, true))
}

// Get は GET /backtests/:id を処理します。
func (h *BacktestHandler) Get(c *gin.Context) {
	run, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewRunResponse(run, true))
}

// List は GET /backtests?limit=20 を処理します。
func (h *BacktestHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}

	runs, err := h.uc.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]dto.RunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, dto.NewRunResponse(&runs[i], false))
	}
	c.JSON(http.StatusOK, out)
}
