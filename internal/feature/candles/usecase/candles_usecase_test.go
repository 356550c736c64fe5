package usecase_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"stock_backtest/internal/feature/candles/domain"
	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
)

// ErrDB はモックと期待値の間で共有されるセンチネルエラーです。
var ErrDB = errors.New("database error")

// mockCandleRepository はCandleRepositoryインターフェースのモック実装です。
type mockCandleRepository struct {
	FindFunc        func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	FindRangeFunc   func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
	UpsertBatchFunc func(ctx context.Context, candles []entity.Candle) error
	FindCalls       int
}

// Find はFindFuncが設定されていればそれを呼び出し、呼び出し回数を記録します。
func (m *mockCandleRepository) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	m.FindCalls++
	if m.FindFunc != nil {
		return m.FindFunc(ctx, symbol, interval, outputsize)
	}
	return nil, errors.New("FindFunc is not implemented")
}

// FindRange はFindRangeFuncが設定されていればそれを呼び出します。
func (m *mockCandleRepository) FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	if m.FindRangeFunc != nil {
		return m.FindRangeFunc(ctx, symbol, interval, from, to)
	}
	return nil, errors.New("FindRangeFunc is not implemented")
}

// UpsertBatch はUpsertBatchFuncが設定されていればそれを呼び出します。
func (m *mockCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, candles)
	}
	return errors.New("UpsertBatchFunc is not implemented")
}

// TestCandlesUsecase_GetCandles はGetCandlesメソッドのパラメータ処理とリポジトリ呼び出しをテストします。
func TestCandlesUsecase_GetCandles(t *testing.T) {
	ctx := context.Background()
	expectedCandles := []entity.Candle{
		{Time: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Open: 100, High: 110, Low: 90, Close: 105},
	}

	testCases := []struct {
		name               string
		inputSymbol        string
		inputInterval      string
		inputOutputsize    int
		mockFindFunc       func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
		expectedCandles    []entity.Candle
		expectedErr        error
		expectedInterval   string // モックに渡されるべきインターバル
		expectedOutputsize int    // モックに渡されるべきoutputsize
	}{
		{
			name:            "success: all parameters specified",
			inputSymbol:     "600000.SH",
			inputInterval:   "1week",
			inputOutputsize: 50,
			mockFindFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
				return expectedCandles, nil
			},
			expectedCandles:    expectedCandles,
			expectedErr:        nil,
			expectedInterval:   "1week",
			expectedOutputsize: 50,
		},
		{
			name:            "success: default value used when interval is empty",
			inputSymbol:     "000001.SZ",
			inputInterval:   "",
			inputOutputsize: 100,
			mockFindFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
				return expectedCandles, nil
			},
			expectedCandles:    expectedCandles,
			expectedErr:        nil,
			expectedInterval:   "1day",
			expectedOutputsize: 100,
		},
		{
			name:            "success: default value used when outputsize is 0",
			inputSymbol:     "600519.SH",
			inputInterval:   "1month",
			inputOutputsize: 0,
			mockFindFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
				return expectedCandles, nil
			},
			expectedCandles:    expectedCandles,
			expectedErr:        nil,
			expectedInterval:   "1month",
			expectedOutputsize: 200,
		},
		{
			name:            "success: default value used when outputsize exceeds max",
			inputSymbol:     "300750.SZ",
			inputInterval:   "1day",
			inputOutputsize: 5001,
			mockFindFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
				return expectedCandles, nil
			},
			expectedCandles:    expectedCandles,
			expectedErr:        nil,
			expectedInterval:   "1day",
			expectedOutputsize: 200,
		},
		{
			name:            "error: repository returns error",
			inputSymbol:     "688981.SH",
			inputInterval:   "1day",
			inputOutputsize: 10,
			mockFindFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
				return nil, ErrDB
			},
			expectedCandles:    nil,
			expectedErr:        ErrDB,
			expectedInterval:   "1day",
			expectedOutputsize: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &mockCandleRepository{
				FindFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
					// ユースケースが正しいパラメータでリポジトリを呼び出すことを検証
					if symbol != tc.inputSymbol || interval != tc.expectedInterval || outputsize != tc.expectedOutputsize {
						t.Errorf("Find called with unexpected params: got symbol=%s, interval=%s, outputsize=%d, want symbol=%s, interval=%s, outputsize=%d",
							symbol, interval, outputsize, tc.inputSymbol, tc.expectedInterval, tc.expectedOutputsize)
					}
					return tc.mockFindFunc(ctx, symbol, interval, outputsize)
				},
			}
			uc := usecase.NewCandlesUsecase(mockRepo)

			candles, err := uc.GetCandles(ctx, tc.inputSymbol, tc.inputInterval, tc.inputOutputsize)

			// センチネル比較によるエラー検証
			if tc.expectedErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected %v, got %v", tc.expectedErr, err)
			}

			// 結果の比較
			if !reflect.DeepEqual(candles, tc.expectedCandles) {
				t.Errorf("result mismatch: got %v, want %v", candles, tc.expectedCandles)
			}

			// 呼び出し回数の検証
			if mockRepo.FindCalls != 1 {
				t.Errorf("Find was called %d times, expected 1", mockRepo.FindCalls)
			}
		})
	}
}

// TestCandlesUsecase_GetCandlesRange は範囲検証と既定インターバル、コードの正規化をテストします。
func TestCandlesUsecase_GetCandlesRange(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("success: defaults interval and upper-cases symbol", func(t *testing.T) {
		want := []entity.Candle{{Symbol: "600000.SH", Time: from, Close: 10}}
		mockRepo := &mockCandleRepository{
			FindRangeFunc: func(ctx context.Context, symbol, interval string, f, tt time.Time) ([]entity.Candle, error) {
				if symbol != "600000.SH" || interval != "1day" || !f.Equal(from) || !tt.Equal(to) {
					t.Errorf("FindRange called with %s %s %v %v", symbol, interval, f, tt)
				}
				return want, nil
			},
		}

		got, err := usecase.NewCandlesUsecase(mockRepo).GetCandlesRange(ctx, "600000.sh", "", from, to)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("result mismatch: got %v, want %v", got, want)
		}
	})

	t.Run("error: to before from", func(t *testing.T) {
		mockRepo := &mockCandleRepository{}

		_, err := usecase.NewCandlesUsecase(mockRepo).GetCandlesRange(ctx, "600000.SH", "1day", to, from)
		if !errors.Is(err, domain.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("error: repository error is returned", func(t *testing.T) {
		mockRepo := &mockCandleRepository{
			FindRangeFunc: func(ctx context.Context, symbol, interval string, f, tt time.Time) ([]entity.Candle, error) {
				return nil, ErrDB
			},
		}

		_, err := usecase.NewCandlesUsecase(mockRepo).GetCandlesRange(ctx, "600000.SH", "1day", from, to)
		if !errors.Is(err, ErrDB) {
			t.Fatalf("expected %v, got %v", ErrDB, err)
		}
	})
}
