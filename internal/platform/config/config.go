// Package config はプロセス全体の設定を環境変数から読み込みます。
// .env の読み込みは cmd 側で godotenv.Load() を呼んでから Load() を実行してください。
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/platform/db"
	"stock_backtest/internal/platform/externalapi/twelvedata"
	"stock_backtest/internal/platform/redis"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Server   ServerConfig
	Database db.Config
	Redis    redis.Config
	Market   twelvedata.Config
	JWT      JWTConfig
	Strategy StrategyConfig
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// Addr は gin.Engine.Run に渡すアドレスを返します。
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// JWTConfig はBearerトークン検証の設定です。
type JWTConfig struct {
	Secret string
}

// StrategyConfig はバックテストの既定パラメータと実行設定です。
type StrategyConfig struct {
	Params           entity.Params
	Workers          int
	LimitUpThreshold float64
	RunTimeout       time.Duration
}

// Load は環境変数から設定を構築します。未設定・不正値は既定値にフォールバックします。
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: db.LoadConfigFromEnv(),
		Redis:    redis.LoadConfig(),
		Market:   twelvedata.LoadConfig(),
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Strategy: loadStrategy(),
	}
}

func loadStrategy() StrategyConfig {
	def := entity.DefaultParams()
	return StrategyConfig{
		Params: entity.Params{
			ProfitTarget:   getEnvAsDecimal("PROFIT_TARGET", def.ProfitTarget),
			StopLoss:       getEnvAsDecimal("STOP_LOSS", def.StopLoss),
			MaxHoldDays:    getEnvAsInt("MAX_HOLD_DAYS", def.MaxHoldDays),
			LookbackDays:   getEnvAsInt("LOOKBACK_DAYS", def.LookbackDays),
			MaxWaitDays:    getEnvAsInt("MAX_WAIT_DAYS", def.MaxWaitDays),
			PositionPct:    getEnvAsDecimal("POSITION_PCT", def.PositionPct),
			CommissionRate: getEnvAsDecimal("COMMISSION_RATE", def.CommissionRate),
			InitialCapital: getEnvAsDecimal("INITIAL_CAPITAL", def.InitialCapital),
			LotSize:        int64(getEnvAsInt("LOT_SIZE", int(def.LotSize))),
		},
		Workers:          getEnvAsInt("BACKTEST_WORKERS", 4),
		LimitUpThreshold: getEnvAsFloat("LIMIT_UP_THRESHOLD", 0.096),
		RunTimeout:       getEnvAsDuration("BACKTEST_TIMEOUT", 10*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvAsFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float env, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}

func getEnvAsDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		slog.Warn("invalid decimal env, using default", "key", key, "value", v, "default", fallback.String())
		return fallback
	}
	return d
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
