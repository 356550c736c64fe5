package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stock_backtest/internal/feature/symbollist/domain"
	"stock_backtest/internal/feature/symbollist/domain/entity"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockSymbolUsecase はSymbolUsecaseインターフェースのモック実装です。
type mockSymbolUsecase struct {
	ListActiveSymbolsFunc func(ctx context.Context, market string) ([]entity.Symbol, error)
}

func (m *mockSymbolUsecase) ListActiveSymbols(ctx context.Context, market string) ([]entity.Symbol, error) {
	if m.ListActiveSymbolsFunc != nil {
		return m.ListActiveSymbolsFunc(ctx, market)
	}
	return nil, nil
}

// TestSymbolHandler_List はListハンドラーの各種シナリオをテーブル駆動テストで検証します。
func TestSymbolHandler_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		mockFunc       func(ctx context.Context, market string) ([]entity.Symbol, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns list of symbols",
			mockFunc: func(ctx context.Context, market string) ([]entity.Symbol, error) {
				return []entity.Symbol{
					{Code: "600000.SH", Name: "SPD Bank", Market: "SH", IsActive: true, SortKey: 1},
					{Code: "000001.SZ", Name: "Ping An Bank", Market: "SZ", IsActive: true, SortKey: 2},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"code":"600000.SH","name":"SPD Bank","market":"SH"},{"code":"000001.SZ","name":"Ping An Bank","market":"SZ"}]`,
		},
		{
			name:  "success: market query is forwarded",
			query: "?market=SZ",
			mockFunc: func(ctx context.Context, market string) ([]entity.Symbol, error) {
				if market != "SZ" {
					return nil, fmt.Errorf("unexpected market %q", market)
				}
				return []entity.Symbol{{Code: "000001.SZ", Name: "Ping An Bank", Market: "SZ"}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"code":"000001.SZ","name":"Ping An Bank","market":"SZ"}]`,
		},
		{
			name: "success: nil from usecase renders empty array",
			mockFunc: func(ctx context.Context, market string) ([]entity.Symbol, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:  "failure: invalid market",
			query: "?market=TSE",
			mockFunc: func(ctx context.Context, market string) ([]entity.Symbol, error) {
				return nil, fmt.Errorf("%w: unknown market %q", domain.ErrInvalidSymbol, market)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid symbol code: unknown market \"TSE\""}`,
		},
		{
			name: "failure: usecase returns error",
			mockFunc: func(ctx context.Context, market string) ([]entity.Symbol, error) {
				return nil, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"database connection failed"}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewSymbolHandler(&mockSymbolUsecase{ListActiveSymbolsFunc: tt.mockFunc})
			router := gin.New()
			router.GET("/symbols", h.List)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/symbols"+tt.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestSymbolHandler_List_DTOConversion は内部フィールドが公開されないことを検証します。
func TestSymbolHandler_List_DTOConversion(t *testing.T) {
	t.Parallel()

	h := NewSymbolHandler(&mockSymbolUsecase{
		ListActiveSymbolsFunc: func(ctx context.Context, market string) ([]entity.Symbol, error) {
			return []entity.Symbol{{Code: "600519.SH", Name: "Kweichow Moutai", Market: "SH", IsActive: true, SortKey: 987}}, nil
		},
	})
	router := gin.New()
	router.GET("/symbols", h.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/symbols", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "987")
	assert.NotContains(t, w.Body.String(), "is_active")
}
