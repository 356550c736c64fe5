package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestMarket(t *testing.T, handler http.HandlerFunc) *TwelveDataMarket {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewTwelveDataMarket(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL + "/"}, server.Client())
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestSplitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code, symbol, exchange string
	}{
		{"600000.SH", "600000", "SSE"},
		{"000001.sz", "000001", "SZSE"},
		{"AAPL", "AAPL", ""},
		{"7203.T", "7203.T", ""},
	}
	for _, tt := range tests {
		symbol, exchange := splitCode(tt.code)
		if symbol != tt.symbol || exchange != tt.exchange {
			t.Errorf("splitCode(%q) = (%q, %q), want (%q, %q)", tt.code, symbol, exchange, tt.symbol, tt.exchange)
		}
	}
}

func TestTwelveDataMarket_GetTimeSeries_Success(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/time_series" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("symbol") != "600000" || q.Get("exchange") != "SSE" {
			t.Errorf("expected symbol 600000 on SSE, got %s on %s", q.Get("symbol"), q.Get("exchange"))
		}
		if q.Get("interval") != "1day" || q.Get("outputsize") != "100" || q.Get("apikey") != "test-key" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(w, `{
			"status": "ok",
			"meta": {"symbol": "600000", "interval": "1day", "exchange": "SSE", "currency": "CNY"},
			"values": [
				{"datetime": "2025-01-16", "open": "10.20", "high": "10.50", "low": "10.10", "close": "10.45", "volume": "2500000"},
				{"datetime": "2025-01-15", "open": "10.00", "high": "10.30", "low": "9.90", "close": "10.20", "volume": "1000000"}
			]
		}`)
	})

	candles, err := market.GetTimeSeries(context.Background(), "600000.SH", "1day", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if !candles[0].Time.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected oldest candle first, got %v", candles[0].Time)
	}
	if candles[0].Open != 10.00 || candles[0].Close != 10.20 || candles[0].Volume != 1000000 {
		t.Errorf("unexpected first candle %+v", candles[0])
	}
	if candles[1].Symbol != "600000.SH" || candles[1].Interval != "1day" {
		t.Errorf("symbol/interval not set: %+v", candles[1])
	}
}

func TestTwelveDataMarket_GetTimeSeries_MissingVolume(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":"ok","values":[{"datetime":"2025-01-15 00:00:00","open":"1","high":"1","low":"1","close":"1","volume":""}]}`)
	})

	candles, err := market.GetTimeSeries(context.Background(), "000300.SH", "1day", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 || candles[0].Volume != 0 {
		t.Errorf("expected one candle with zero volume, got %+v", candles)
	}
}

func TestTwelveDataMarket_GetTimeSeries_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "http error", status: http.StatusInternalServerError, body: `{}`, wantErr: "twelvedata http 500"},
		{name: "api error", status: http.StatusOK, body: `{"status":"error","message":"Invalid API key"}`, wantErr: "Invalid API key"},
		{name: "invalid json", status: http.StatusOK, body: `{not json`, wantErr: "decode time series"},
		{
			name:    "invalid datetime",
			status:  http.StatusOK,
			body:    `{"status":"ok","values":[{"datetime":"15/01/2025","open":"1","high":"1","low":"1","close":"1","volume":"1"}]}`,
			wantErr: "parse time",
		},
		{
			name:    "invalid high",
			status:  http.StatusOK,
			body:    `{"status":"ok","values":[{"datetime":"2025-01-15","open":"1","high":"x","low":"1","close":"1","volume":"1"}]}`,
			wantErr: "parse high",
		},
		{
			name:    "invalid volume",
			status:  http.StatusOK,
			body:    `{"status":"ok","values":[{"datetime":"2025-01-15","open":"1","high":"1","low":"1","close":"1","volume":"1.5"}]}`,
			wantErr: "parse volume",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := market.GetTimeSeries(context.Background(), "600000.SH", "1day", 10)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTwelveDataMarket_GetTimeSeries_ContextCancellation(t *testing.T) {
	t.Parallel()

	market := newTestMarket(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := market.GetTimeSeries(ctx, "600000.SH", "1day", 10); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TWELVE_DATA_API_KEY", "k")
	t.Setenv("TWELVE_DATA_BASE_URL", "")
	t.Setenv("TWELVE_DATA_TIMEOUT", "3s")

	cfg := LoadConfig()

	if cfg.TwelveDataAPIKey != "k" {
		t.Errorf("expected api key k, got %q", cfg.TwelveDataAPIKey)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Errorf("expected default base url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", cfg.Timeout)
	}
}
