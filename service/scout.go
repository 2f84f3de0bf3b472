// Package service wires the candle source, strategies, alert sink and the
// mode-chosen orchestrator into a runnable scout service.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avhal/scout/backtest"
	"github.com/avhal/scout/database"
	"github.com/avhal/scout/fetch"
	"github.com/avhal/scout/notify"
	"github.com/avhal/scout/runner"
	"github.com/avhal/scout/shared"
	"github.com/avhal/scout/strategy"
	"github.com/avhal/scout/window"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// LiveMode runs strategies incrementally against the live candle feed.
	LiveMode = "live"
	// BacktestMode replays strategies over a historical candle range.
	BacktestMode = "backtest"
)

// ScoutConfig represents the configuration struct for the scout service.
type ScoutConfig struct {
	// Mode selects live or backtest execution.
	Mode string
	// Instruments represents the tracked instruments.
	Instruments []string
	// Timeframe is the candle timeframe granularity.
	Timeframe string
	// StrategyNames represents the configured strategy names, or "all".
	StrategyNames []string
	// OandaAPIKey is the OANDA API key.
	OandaAPIKey string
	// OandaEnv selects the practice or trade OANDA environment.
	OandaEnv string
	// WebhookURL is the alert webhook endpoint.
	WebhookURL string
	// StartDate is the inclusive backtest range start (ISO-8601).
	StartDate string
	// EndDate is the inclusive backtest range end (ISO-8601).
	EndDate string
	// DataFilepath is the filepath to offline candle data. When set,
	// backtests load candles from the file instead of the OANDA API.
	DataFilepath string
	// ReportFilepath is the filepath to write the backtest report CSV to.
	ReportFilepath string
	// DBEndpoint represents the database connection endpoint. Optional.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Scout represents a candle pattern scouting service.
type Scout struct {
	cfg        *ScoutConfig
	runner     *runner.Runner
	backtester *backtest.Backtester
	db         *database.Database
	logger     *zerolog.Logger
}

// newCandleSource creates the candle source for the provided config.
func newCandleSource(cfg *ScoutConfig) (shared.CandleSource, error) {
	if cfg.DataFilepath != "" {
		source, err := fetch.NewFileSource(&fetch.FileSourceConfig{FilePath: cfg.DataFilepath})
		if err != nil {
			return nil, fmt.Errorf("creating file candle source: %w", err)
		}

		return source, nil
	}

	baseURL := fetch.PracticeBaseURL
	if cfg.OandaEnv == "live" {
		baseURL = fetch.TradeBaseURL
	}

	source, err := fetch.NewOandaClient(&fetch.OandaConfig{
		APIKey:  cfg.OandaAPIKey,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating oanda client: %w", err)
	}

	return source, nil
}

// NewScout initializes a new scout service.
func NewScout(ctx context.Context, cfg *ScoutConfig) (*Scout, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "scout").Logger()

	if cfg.Cancel == nil {
		return nil, fmt.Errorf("context cancellation function cannot be nil")
	}

	timeframe, err := shared.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("parsing timeframe: %w", err)
	}

	source, err := newCandleSource(cfg)
	if err != nil {
		return nil, err
	}

	var db *database.Database
	if cfg.DBEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}
	}

	service := &Scout{
		cfg:    cfg,
		db:     db,
		logger: &logger,
	}

	switch cfg.Mode {
	case LiveMode:
		var strategies []strategy.Strategy
		for idx := range cfg.Instruments {
			set, err := strategy.NewSet(cfg.StrategyNames, cfg.Instruments[idx], timeframe)
			if err != nil {
				return nil, fmt.Errorf("resolving strategies for %s: %w", cfg.Instruments[idx], err)
			}

			strategies = append(strategies, set...)
		}

		notifierLogger := logger.With().Str("component", "notifier").Logger()
		notifier, err := notify.NewWebhookNotifier(&notify.WebhookConfig{
			URL:    cfg.WebhookURL,
			Logger: &notifierLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating webhook notifier: %w", err)
		}

		provider, err := window.NewLiveProvider(&window.LiveProviderConfig{Source: source})
		if err != nil {
			return nil, fmt.Errorf("creating live window provider: %w", err)
		}

		var store shared.AlertStorer
		if db != nil {
			store = db
		}

		runnerLogger := logger.With().Str("component", "runner").Logger()
		runnerCfg := &runner.RunnerConfig{
			Strategies:   strategies,
			Provider:     provider,
			Sink:         notifier,
			Store:        store,
			PollInterval: runner.DefaultPollInterval,
			JobScheduler: gocron.NewScheduler(time.UTC),
			Logger:       &runnerLogger,
		}
		service.runner, err = runner.NewRunner(runnerCfg)
		if err != nil {
			return nil, fmt.Errorf("creating strategy runner: %w", err)
		}

	case BacktestMode:
		if len(cfg.Instruments) != 1 {
			return nil, fmt.Errorf("backtest requires exactly one instrument, got %d", len(cfg.Instruments))
		}

		start, err := time.Parse(shared.DateLayout, cfg.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing backtest start date: %w", err)
		}

		end, err := time.Parse(shared.DateLayout, cfg.EndDate)
		if err != nil {
			return nil, fmt.Errorf("parsing backtest end date: %w", err)
		}

		strategies, err := strategy.NewSet(cfg.StrategyNames, cfg.Instruments[0], timeframe)
		if err != nil {
			return nil, fmt.Errorf("resolving strategies for %s: %w", cfg.Instruments[0], err)
		}

		backtesterLogger := logger.With().Str("component", "backtester").Logger()
		service.backtester, err = backtest.NewBacktester(&backtest.BacktesterConfig{
			Instrument: cfg.Instruments[0],
			Timeframe:  timeframe,
			Start:      start,
			End:        end,
			Strategies: strategies,
			Source:     source,
			Logger:     &backtesterLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating backtester: %w", err)
		}

	default:
		return nil, fmt.Errorf("unknown mode: %s", cfg.Mode)
	}

	return service, nil
}

// runBacktest runs the backtest and emits its report.
func (s *Scout) runBacktest(ctx context.Context) error {
	report, err := s.backtester.Run(ctx)
	if err != nil {
		return fmt.Errorf("running backtest: %w", err)
	}

	fmt.Print(report.String())

	if s.cfg.ReportFilepath != "" {
		file, err := os.Create(s.cfg.ReportFilepath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}

		defer file.Close()

		err = report.WriteCSV(file)
		if err != nil {
			return fmt.Errorf("writing report csv: %w", err)
		}

		s.logger.Info().Msgf("backtest report written to %s", s.cfg.ReportFilepath)
	}

	if s.db != nil {
		err = s.db.PersistBacktestReport(ctx, report)
		if err != nil {
			s.logger.Error().Msgf("persisting backtest report: %v", err)
		}
	}

	return nil
}

// Run handles the lifecycle processes of the scout service.
func (s *Scout) Run(ctx context.Context) error {
	switch s.cfg.Mode {
	case LiveMode:
		return s.runner.Run(ctx)
	case BacktestMode:
		err := s.runBacktest(ctx)
		s.cfg.Cancel()
		return err
	default:
		return errors.New("no orchestrator configured")
	}
}
