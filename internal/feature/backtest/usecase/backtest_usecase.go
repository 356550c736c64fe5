// Package usecase runs batch backtests over a symbol universe and stores the results.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/engine"
	symboldomain "stock_backtest/internal/feature/symbollist/domain"
)

const (
	// DefaultStrategyName is stored on runs that do not name their strategy.
	DefaultStrategyName = "limit_up_pullback"
	// DefaultListLimit is the page size of List when the caller passes no limit.
	DefaultListLimit = 20
	// MaxListLimit caps List.
	MaxListLimit = 100
)

// BarRepository loads ascending daily bars of one symbol in [from, to].
type BarRepository interface {
	LoadBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.Bar, error)
}

// SymbolResolver turns the requested symbols into the run's universe.
type SymbolResolver interface {
	ResolveUniverse(ctx context.Context, requested []string) ([]string, error)
}

// RunRepository persists finished runs.
type RunRepository interface {
	Save(ctx context.Context, run *entity.Run) error
	FindByID(ctx context.Context, id string) (*entity.Run, error)
	// List returns runs newest first without instrument details.
	List(ctx context.Context, limit int) ([]entity.Run, error)
}

// Recorder receives run outcomes for metrics.
type Recorder interface {
	RunCompleted(run *entity.Run, elapsed time.Duration)
	RunFailed(elapsed time.Duration)
}

// Request describes one batch backtest.
type Request struct {
	StrategyName string
	Symbols      []string
	Start        time.Time
	End          time.Time
	Params       entity.Params
}

// BacktestUsecase simulates every instrument of a request independently and aggregates the results.
type BacktestUsecase struct {
	bars     BarRepository
	symbols  SymbolResolver
	runs     RunRepository
	recorder Recorder
	workers  int
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewBacktestUsecase wires a usecase. workers <= 0 runs one instrument at a time.
// A nil runs repository simulates without persisting, as the CLI does for CSV input.
func NewBacktestUsecase(bars BarRepository, symbols SymbolResolver, runs RunRepository, recorder Recorder, workers int, logger *slog.Logger) *BacktestUsecase {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BacktestUsecase{
		bars:     bars,
		symbols:  symbols,
		runs:     runs,
		recorder: recorder,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// WarmupDays is how many calendar days of history are loaded before the start date
// so that patterns and lookback windows near the start can be evaluated.
func WarmupDays(p entity.Params) int {
	return p.LookbackDays*2 + 10
}

// Run validates req, simulates every instrument and persists the run.
// Invalid parameters and context cancellation abort the run; per-instrument
// data failures are recorded on the instrument and do not.
func (u *BacktestUsecase) Run(ctx context.Context, req Request) (*entity.Run, error) {
	started := u.now()

	if err := validateRequest(&req, started); err != nil {
		return nil, err
	}

	codes, err := u.symbols.ResolveUniverse(ctx, req.Symbols)
	if err != nil {
		if errors.Is(err, symboldomain.ErrInvalidSymbol) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
		}
		return nil, fmt.Errorf("resolve symbols: %w", err)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no symbols to test", domain.ErrInvalidParams)
	}

	run := &entity.Run{
		ID:           u.newID(),
		StrategyName: req.StrategyName,
		StartDate:    req.Start,
		EndDate:      req.End,
		Params:       req.Params,
	}
	log := u.logger.With("run_id", run.ID)
	log.Info("backtest started", "symbols", len(codes),
		"start", req.Start.Format(time.DateOnly), "end", req.End.Format(time.DateOnly), "workers", u.workers)

	results := make([]entity.InstrumentResult, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := u.simulateOne(gctx, log, code, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.failed(started)
		return nil, fmt.Errorf("backtest cancelled: %w", err)
	}

	run.Instruments = results
	run.Summary = Summarize(results)
	run.CreatedAt = u.now()

	if u.runs != nil {
		if err := u.runs.Save(ctx, run); err != nil {
			u.failed(started)
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	elapsed := u.now().Sub(started)
	if u.recorder != nil {
		u.recorder.RunCompleted(run, elapsed)
	}
	log.Info("backtest completed",
		"instruments", run.Summary.InstrumentsTested, "failed", run.Summary.InstrumentsFailed,
		"trades", run.Summary.TotalTrades, "total_profit", run.Summary.TotalProfit.StringFixed(2),
		"elapsed", elapsed)
	return run, nil
}

func (u *BacktestUsecase) failed(started time.Time) {
	if u.recorder != nil {
		u.recorder.RunFailed(u.now().Sub(started))
	}
}

// simulateOne returns an error only when ctx is done.
func (u *BacktestUsecase) simulateOne(ctx context.Context, log *slog.Logger, symbol string, req Request) (entity.InstrumentResult, error) {
	from := req.Start.AddDate(0, 0, -WarmupDays(req.Params))
	bars, err := u.bars.LoadBars(ctx, symbol, from, req.End)
	if err != nil {
		if ctx.Err() != nil {
			return entity.InstrumentResult{}, ctx.Err()
		}
		log.Warn("bars failed to load, instrument skipped", "symbol", symbol, "error", err)
		return skipped(symbol, req.Params, err), nil
	}
	if !hasBarsFrom(bars, req.Start) {
		log.Warn("no bars in range, instrument skipped", "symbol", symbol)
		return skipped(symbol, req.Params, domain.ErrNoBars), nil
	}

	diag := engine.NewSlogDiagnostics(log)
	return engine.Simulate(symbol, bars, req.Params, req.Start, diag), nil
}

func skipped(symbol string, p entity.Params, err error) entity.InstrumentResult {
	return entity.InstrumentResult{
		Symbol:         symbol,
		InitialCapital: p.InitialCapital,
		FinalValue:     p.InitialCapital,
		Error:          err.Error(),
	}
}

func hasBarsFrom(bars []entity.Bar, start time.Time) bool {
	return len(bars) > 0 && !bars[len(bars)-1].Date.Before(start)
}

func validateRequest(req *Request, now time.Time) error {
	if err := req.Params.Validate(); err != nil {
		return err
	}
	if req.Start.IsZero() {
		return fmt.Errorf("%w: start date is required", domain.ErrInvalidParams)
	}
	if req.End.IsZero() {
		req.End = now
	}
	if req.End.Before(req.Start) {
		return fmt.Errorf("%w: end date %s is before start date %s", domain.ErrInvalidParams,
			req.End.Format(time.DateOnly), req.Start.Format(time.DateOnly))
	}
	if req.StrategyName == "" {
		req.StrategyName = DefaultStrategyName
	}
	return nil
}

// Get returns a stored run with its instruments.
func (u *BacktestUsecase) Get(ctx context.Context, id string) (*entity.Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if u.runs == nil {
		return nil, domain.ErrRunNotFound
	}
	return u.runs.FindByID(ctx, id)
}

// List returns the newest runs. limit outside (0, MaxListLimit] falls back to DefaultListLimit.
func (u *BacktestUsecase) List(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	if u.runs == nil {
		return nil, nil
	}
	return u.runs.List(ctx, limit)
}
