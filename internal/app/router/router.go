package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	backtesthandler "stock_backtest/internal/feature/backtest/transport/handler"
	candleshandler "stock_backtest/internal/feature/candles/transport/handler"
	symbollisthandler "stock_backtest/internal/feature/symbollist/transport/handler"
	"stock_backtest/internal/platform/http/handler"
	jwtmw "stock_backtest/internal/platform/jwt"
)

// readyTimeout bounds all dependency checks of one /readyz call.
const readyTimeout = 2 * time.Second

// Options はルーター生成時の設定です。
type Options struct {
	JWTSecret  string
	// RunTimeout は POST /backtests 1回あたりの上限時間です。0 は無制限。
	RunTimeout time.Duration
	Readiness  map[string]handler.Check
}

func NewRouter(opts Options, candles *candleshandler.CandlesHandler,
	symbol *symbollisthandler.SymbolHandler, backtests *backtesthandler.BacktestHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(readyTimeout, opts.Readiness))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret))
	{
		auth.GET("/candles/:code", candles.GetCandlesHandler)
		auth.GET("/symbols", symbol.List)
		auth.POST("/backtests", withTimeout(opts.RunTimeout), backtests.Create)
		auth.GET("/backtests", backtests.List)
		auth.GET("/backtests/:id", backtests.Get)
	}

	return r
}

// withTimeout attaches a deadline to the request context.
func withTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
