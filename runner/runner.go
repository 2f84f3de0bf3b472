// Package runner drives live strategy evaluation on a fixed polling
// interval.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avhal/scout/shared"
	"github.com/avhal/scout/strategy"
	"github.com/avhal/scout/window"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const (
	// DefaultPollInterval is the default interval between evaluation ticks.
	DefaultPollInterval = time.Minute
)

// RunnerConfig represents the configuration for the strategy runner.
type RunnerConfig struct {
	// Strategies represents the configured strategies, evaluated in order.
	Strategies []strategy.Strategy
	// Provider supplies candle windows for evaluation.
	Provider window.Provider
	// Sink receives triggered alerts for delivery.
	Sink shared.AlertSink
	// Store persists dispatched alerts. Optional.
	Store shared.AlertStorer
	// PollInterval is the interval between evaluation ticks.
	PollInterval time.Duration
	// JobScheduler represents the job scheduler.
	JobScheduler *gocron.Scheduler
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *RunnerConfig) Validate() error {
	var errs error

	if len(cfg.Strategies) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no strategies provided for runner"))
	}
	if cfg.Provider == nil {
		errs = errors.Join(errs, fmt.Errorf("window provider cannot be nil"))
	}
	if cfg.Sink == nil {
		errs = errors.Join(errs, fmt.Errorf("alert sink cannot be nil"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	return errs
}

// Runner orchestrates live strategy evaluation. On every tick it pulls the
// latest completed candle window per configured strategy and dispatches
// alerts for newly triggered verdicts.
type Runner struct {
	cfg    *RunnerConfig
	states map[string]*strategy.State
}

// NewRunner initializes a new strategy runner.
func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	// Evaluation state is keyed per (strategy, instrument, timeframe) and
	// lives for the process lifetime.
	states := make(map[string]*strategy.State, len(cfg.Strategies))
	for idx := range cfg.Strategies {
		states[strategy.Key(cfg.Strategies[idx])] = strategy.NewState()
	}

	return &Runner{
		cfg:    cfg,
		states: states,
	}, nil
}

// checkStrategy evaluates the provided strategy against its latest window
// and dispatches an alert if it triggered.
func (r *Runner) checkStrategy(ctx context.Context, strat strategy.Strategy) {
	logger := r.cfg.Logger.With().Str("strategy", strat.Name()).
		Str("instrument", strat.Instrument()).
		Str("timeframe", strat.Timeframe().String()).Logger()

	candles, err := r.cfg.Provider.Window(ctx, strat.Instrument(), strat.Timeframe(), strat.RequiredCandles())
	if err != nil {
		if errors.Is(err, window.ErrInsufficientData) {
			logger.Debug().Msg("insufficient candle data, skipping check")
			return
		}

		logger.Error().Msgf("fetching candle window: %v", err)
		return
	}

	state := r.states[strategy.Key(strat)]
	verdict, evaluated := strategy.Evaluate(strat, state, candles)
	if !evaluated {
		logger.Debug().Msgf("skipping check: %s", verdict.Reason)
		return
	}

	newest := candles[len(candles)-1]
	logger.Info().Time("candle", newest.Time).Bool("triggered", verdict.Triggered).
		Str("reason", verdict.Reason).Msg("checked candle")

	if !verdict.Triggered {
		return
	}

	alert := shared.NewAlertPayload(strat.Name(), strat.Instrument(), strat.Timeframe(),
		newest.Time, verdict.Reason)

	// Delivery failures do not roll back the evaluation state, the candle
	// has been evaluated regardless of the delivery outcome.
	err = r.cfg.Sink.Notify(ctx, alert)
	if err != nil {
		logger.Error().Msgf("delivering alert: %v", err)
	}

	if r.cfg.Store != nil {
		err = r.cfg.Store.PersistAlert(ctx, alert)
		if err != nil {
			logger.Error().Msgf("persisting alert: %v", err)
		}
	}
}

// RunChecks evaluates every configured strategy once. Failures are isolated
// per strategy and never abort the remaining checks of the tick.
func (r *Runner) RunChecks(ctx context.Context) {
	for idx := range r.cfg.Strategies {
		r.checkStrategy(ctx, r.cfg.Strategies[idx])
	}
}

// Run manages the lifecycle processes of the strategy runner.
func (r *Runner) Run(ctx context.Context) error {
	r.cfg.Logger.Info().Msgf("runner started with %d strategies, polling every %s",
		len(r.cfg.Strategies), r.cfg.PollInterval)

	// Check once immediately, then on every scheduler tick.
	r.RunChecks(ctx)

	_, err := r.cfg.JobScheduler.Every(r.cfg.PollInterval).Do(func() {
		r.RunChecks(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling strategy checks: %w", err)
	}

	r.cfg.JobScheduler.StartAsync()
	defer r.cfg.JobScheduler.Stop()

	<-ctx.Done()

	return nil
}
