package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_backtest/internal/feature/backtest/domain"
)

func writeCSV(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestCSVBarSource_LoadBars(t *testing.T) {
	dir := t.TempDir()
	// descending trade_date with a UTF-8 BOM, as exported by common A-share data tools
	writeCSV(t, dir, "600000.SH.csv", "\xef\xbb\xbfts_code,trade_date,open,high,low,close,vol\n"+
		"600000.SH,20250106,11.20,11.80,11.10,11.50,1200.0\n"+
		"600000.SH,20250103,10.10,11.00,10.00,11.00,3000.0\n"+
		"600000.SH,20250102,9.90,10.10,9.80,10.00,1000.0\n")

	src := NewCSVBarSource(dir, 0)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := src.LoadBars(context.Background(), "600000.SH", from, to)

	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), bars[2].Date)
	assert.Equal(t, []bool{false, true, false}, []bool{bars[0].LimitUp, bars[1].LimitUp, bars[2].LimitUp})
	assert.Equal(t, "11", bars[1].Close.String())
	assert.Equal(t, "9.8", bars[0].Low.String())
	assert.Equal(t, int64(3000), bars[1].Volume)
}

func TestCSVBarSource_LoadBars_RangeAndLimitUpColumn(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "000001.SZ.csv", "date,open,high,low,close,limit_up\n"+
		"2025-01-02,10,10,10,10,false\n"+
		"2025-01-03,10,10,10,10.5,true\n"+
		"2025-01-06,10,10,10,10,false\n")

	src := NewCSVBarSource(dir, 0.096)
	bars, err := src.LoadBars(context.Background(), "000001.SZ",
		time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.True(t, bars[0].LimitUp, "explicit column wins over the threshold")
	assert.Zero(t, bars[0].Volume)
}

func TestCSVBarSource_LoadBars_FlagColumns(t *testing.T) {
	tests := []struct {
		name   string
		column string
		values []string
		want   []bool
	}{
		{name: "pandas float flags", column: "limit_up", values: []string{"1.0", "1.0", "0.0"}, want: []bool{true, true, false}},
		{name: "integer flags", column: "limit_up", values: []string{"0", "1", "0"}, want: []bool{false, true, false}},
		{name: "boolean words", column: "limit_up", values: []string{"False", "TRUE", "false"}, want: []bool{false, true, false}},
		{name: "up_limit column", column: "up_limit", values: []string{"1", "0", "1"}, want: []bool{true, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeCSV(t, dir, "600000.SH.csv", "date,open,high,low,close,"+tt.column+"\n"+
				"2025-01-02,10,10,10,10,"+tt.values[0]+"\n"+
				"2025-01-03,10,10,10,10,"+tt.values[1]+"\n"+
				"2025-01-06,10,10,10,10,"+tt.values[2]+"\n")

			bars, err := NewCSVBarSource(dir, 0).LoadBars(context.Background(), "600000.SH", time.Time{}, time.Now())

			require.NoError(t, err)
			require.Len(t, bars, 3)
			assert.Equal(t, tt.want, []bool{bars[0].LimitUp, bars[1].LimitUp, bars[2].LimitUp})
		})
	}
}

func TestCSVBarSource_LoadBars_Errors(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "NOCLOSE.csv", "date,open,high,low\n2025-01-02,1,1,1\n")
	writeCSV(t, dir, "BADDATE.csv", "date,open,high,low,close\n02/01/2025,1,1,1,1\n")
	writeCSV(t, dir, "BADPRICE.csv", "date,open,high,low,close\n2025-01-02,1,x,1,1\n")
	writeCSV(t, dir, "BADFLAG.csv", "date,open,high,low,close,limit_up\n2025-01-02,1,1,1,1,yes\n")
	src := NewCSVBarSource(dir, 0)
	from, to := time.Time{}, time.Now()

	tests := []struct {
		symbol  string
		wantErr string
		wantIs  error
	}{
		{symbol: "MISSING", wantIs: domain.ErrNoBars},
		{symbol: "NOCLOSE", wantErr: "missing close column"},
		{symbol: "BADDATE", wantErr: "unrecognized date"},
		{symbol: "BADPRICE", wantErr: "parse high"},
		{symbol: "BADFLAG", wantErr: "line 2: parse limit_up"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			_, err := src.LoadBars(context.Background(), tt.symbol, from, to)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCSVBarSource_LoadBars_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVBarSource(t.TempDir(), 0).LoadBars(ctx, "600000.SH", time.Time{}, time.Now())

	assert.ErrorIs(t, err, context.Canceled)
}
