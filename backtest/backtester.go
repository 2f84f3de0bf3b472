// Package backtest replays strategy evaluation over a historical candle
// series, producing a deterministic, ordered report instead of live alerts.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/avhal/scout/shared"
	"github.com/avhal/scout/strategy"
	"github.com/avhal/scout/window"
	"github.com/rs/zerolog"
)

// BacktesterConfig represents the configuration for the backtester.
type BacktesterConfig struct {
	// Instrument is the instrument to backtest.
	Instrument string
	// Timeframe is the timeframe to backtest.
	Timeframe shared.Timeframe
	// Start is the inclusive start of the backtest range.
	Start time.Time
	// End is the inclusive end of the backtest range.
	End time.Time
	// Strategies represents the backtested strategies, evaluated in order.
	Strategies []strategy.Strategy
	// Source represents the candle source for the historical series.
	Source shared.CandleSource
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *BacktesterConfig) Validate() error {
	var errs error

	if cfg.Instrument == "" {
		errs = errors.Join(errs, fmt.Errorf("backtest instrument cannot be an empty string"))
	}
	if len(cfg.Strategies) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no strategies provided for backtest"))
	}
	if cfg.Source == nil {
		errs = errors.Join(errs, fmt.Errorf("candle source cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}
	if cfg.Start.IsZero() || cfg.End.IsZero() {
		errs = errors.Join(errs, fmt.Errorf("backtest range cannot be zero"))
	}
	if !cfg.Start.IsZero() && !cfg.End.IsZero() && !cfg.Start.Before(cfg.End) {
		errs = errors.Join(errs, fmt.Errorf("backtest start %s is not before end %s",
			cfg.Start.Format(shared.DateLayout), cfg.End.Format(shared.DateLayout)))
	}

	for idx := range cfg.Strategies {
		strat := cfg.Strategies[idx]
		if strat.Instrument() != cfg.Instrument || strat.Timeframe() != cfg.Timeframe {
			errs = errors.Join(errs, fmt.Errorf("strategy %s is bound to %s (%s), not the backtested %s (%s)",
				strat.Name(), strat.Instrument(), strat.Timeframe().String(),
				cfg.Instrument, cfg.Timeframe.String()))
		}
	}

	return errs
}

// Backtester replays a historical candle series through the configured
// strategies. Evaluation runs through the same dedupe-and-check step as the
// live runner, with dedicated per-run state, so results are predictive of
// live behaviour and reproducible for identical inputs.
type Backtester struct {
	cfg *BacktesterConfig
}

// NewBacktester initializes a new backtester.
func NewBacktester(cfg *BacktesterConfig) (*Backtester, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &Backtester{cfg: cfg}, nil
}

// loadSeries bulk fetches the historical series for the configured range,
// keeping only completed candles, deduplicated by open time and ordered
// ascending.
func (b *Backtester) loadSeries(ctx context.Context) ([]*shared.Candlestick, error) {
	candles, err := b.cfg.Source.FetchRange(ctx, b.cfg.Instrument, b.cfg.Timeframe, b.cfg.Start, b.cfg.End)
	if err != nil {
		return nil, fmt.Errorf("fetching historical candles for %s (%s): %w",
			b.cfg.Instrument, b.cfg.Timeframe.String(), err)
	}

	series := make([]*shared.Candlestick, 0, len(candles))
	seen := make(map[time.Time]bool, len(candles))
	for idx := range candles {
		if !candles[idx].Complete {
			continue
		}
		if seen[candles[idx].Time] {
			continue
		}

		seen[candles[idx].Time] = true
		series = append(series, candles[idx])
	}

	slices.SortFunc(series, func(a, b *shared.Candlestick) int {
		return a.Time.Compare(b.Time)
	})

	if len(series) == 0 {
		return nil, fmt.Errorf("no historical candles returned for %s (%s) between %s and %s",
			b.cfg.Instrument, b.cfg.Timeframe.String(),
			b.cfg.Start.Format(shared.DateLayout), b.cfg.End.Format(shared.DateLayout))
	}

	return series, nil
}

// Run replays the configured range and returns the ordered report.
func (b *Backtester) Run(ctx context.Context) (*Report, error) {
	series, err := b.loadSeries(ctx)
	if err != nil {
		return nil, err
	}

	b.cfg.Logger.Info().Msgf("replaying %d candles for %s (%s) with %d strategies",
		len(series), b.cfg.Instrument, b.cfg.Timeframe.String(), len(b.cfg.Strategies))

	provider, err := window.NewSeriesProvider(b.cfg.Instrument, b.cfg.Timeframe, series)
	if err != nil {
		return nil, fmt.Errorf("creating series provider: %w", err)
	}

	// A backtest always runs on fresh evaluation state, isolated from any
	// live run.
	states := make(map[string]*strategy.State, len(b.cfg.Strategies))
	for idx := range b.cfg.Strategies {
		states[strategy.Key(b.cfg.Strategies[idx])] = strategy.NewState()
	}

	maxRequired := 0
	for idx := range b.cfg.Strategies {
		if b.cfg.Strategies[idx].RequiredCandles() > maxRequired {
			maxRequired = b.cfg.Strategies[idx].RequiredCandles()
		}
	}

	report := &Report{
		Instrument: b.cfg.Instrument,
		Timeframe:  b.cfg.Timeframe,
		Start:      b.cfg.Start,
		End:        b.cfg.End,
		Candles:    len(series),
		Triggers:   make(map[string]int, len(b.cfg.Strategies)),
	}
	for idx := range b.cfg.Strategies {
		report.Triggers[b.cfg.Strategies[idx].Name()] = 0
	}

	for provider.Advance() {
		// Start evaluating once the largest requested lookback exists.
		if provider.Cursor()+1 < maxRequired {
			continue
		}

		for idx := range b.cfg.Strategies {
			strat := b.cfg.Strategies[idx]

			candles, err := provider.Window(ctx, strat.Instrument(), strat.Timeframe(), strat.RequiredCandles())
			if err != nil {
				if errors.Is(err, window.ErrInsufficientData) {
					continue
				}

				return nil, fmt.Errorf("deriving window for %s: %w", strat.Name(), err)
			}

			verdict, evaluated := strategy.Evaluate(strat, states[strategy.Key(strat)], candles)
			if !evaluated || !verdict.Triggered {
				continue
			}

			newest := candles[len(candles)-1]
			b.cfg.Logger.Info().Int("index", provider.Cursor()).Time("candle", newest.Time).
				Str("strategy", strat.Name()).Str("reason", verdict.Reason).Msg("signal")

			// Record ids derive from the run inputs so repeated runs
			// produce identical reports.
			report.Records = append(report.Records, Record{
				AlertPayload: shared.AlertPayload{
					ID:         fmt.Sprintf("%s-%d", strategy.Key(strat), provider.Cursor()),
					Strategy:   strat.Name(),
					Instrument: strat.Instrument(),
					Timeframe:  strat.Timeframe(),
					Time:       newest.Time,
					Reason:     verdict.Reason,
				},
				Index: provider.Cursor(),
			})
			report.Triggers[strat.Name()]++
		}
	}

	return report, nil
}
