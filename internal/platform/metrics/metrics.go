// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"stock_backtest/internal/feature/backtest/domain/entity"
)

const namespace = "stock_backtest"

// BacktestRuns counts finished runs by status ("ok", "failed").
var BacktestRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backtest",
		Name:      "runs_total",
		Help:      "Backtest runs by final status",
	},
	[]string{"status"},
)

// BacktestRunDuration is the wall time of a whole run, including persistence.
var BacktestRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backtest",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a backtest run",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	},
)

// InstrumentsSimulated counts instruments by outcome ("traded", "idle", "failed").
var InstrumentsSimulated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backtest",
		Name:      "instruments_total",
		Help:      "Instruments simulated by outcome",
	},
	[]string{"outcome"},
)

// TradesClosed counts round trips by sell reason.
var TradesClosed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backtest",
		Name:      "trades_total",
		Help:      "Closed trades by sell reason",
	},
	[]string{"reason"},
)

// SignalsCreated counts buy targets set by the pattern detector.
var SignalsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backtest",
		Name:      "signals_total",
		Help:      "Buy targets created",
	},
)

// CacheRequests counts candle cache lookups by operation and result ("hit", "miss", "corrupt").
var CacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Candle cache lookups",
	},
	[]string{"op", "result"},
)

// BacktestRecorder feeds run outcomes into the collectors above.
type BacktestRecorder struct{}

// NewBacktestRecorder returns a recorder backed by the default registry.
func NewBacktestRecorder() *BacktestRecorder {
	return &BacktestRecorder{}
}

// RunCompleted records a successful run.
func (BacktestRecorder) RunCompleted(run *entity.Run, elapsed time.Duration) {
	BacktestRuns.WithLabelValues("ok").Inc()
	BacktestRunDuration.Observe(elapsed.Seconds())

	for _, ir := range run.Instruments {
		switch {
		case ir.Error != "":
			InstrumentsSimulated.WithLabelValues("failed").Inc()
		case len(ir.Trades) > 0:
			InstrumentsSimulated.WithLabelValues("traded").Inc()
		default:
			InstrumentsSimulated.WithLabelValues("idle").Inc()
		}
		SignalsCreated.Add(float64(ir.Signals))
		for _, tr := range ir.Trades {
			TradesClosed.WithLabelValues(string(tr.SellReason)).Inc()
		}
	}
}

// RunFailed records a run that returned an error.
func (BacktestRecorder) RunFailed(elapsed time.Duration) {
	BacktestRuns.WithLabelValues("failed").Inc()
	BacktestRunDuration.Observe(elapsed.Seconds())
}
