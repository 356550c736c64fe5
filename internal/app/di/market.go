// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"stock_backtest/internal/platform/externalapi/twelvedata"
	infrahttp "stock_backtest/internal/platform/http"
)

// NewMarket creates the Twelve Data client used by ingest.
// A missing API key is only logged; requests then fail per symbol and ingest moves on.
func NewMarket(cfg twelvedata.Config) *twelvedata.TwelveDataMarket {
	if cfg.TwelveDataAPIKey == "" {
		slog.Warn("TWELVE_DATA_API_KEY is not set; market requests will be rejected")
	}
	return twelvedata.NewTwelveDataMarket(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
}
