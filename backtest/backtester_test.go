package backtest

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/avhal/scout/runner"
	"github.com/avhal/scout/shared"
	"github.com/avhal/scout/strategy"
	"github.com/avhal/scout/window"
	"github.com/go-co-op/gocron"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

type sourceMock struct {
	candles []*shared.Candlestick
	err     error
}

func (m *sourceMock) FetchLatest(ctx context.Context, instrument string, timeframe shared.Timeframe, count int) ([]*shared.Candlestick, error) {
	return m.candles, m.err
}

func (m *sourceMock) FetchRange(ctx context.Context, instrument string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]*shared.Candlestick, error) {
	return m.candles, m.err
}

var seriesStart = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// seriesCandle creates a completed test candle idx intervals after the series
// start.
func seriesCandle(idx int, open float64, close float64) *shared.Candlestick {
	high := open
	if close > high {
		high = close
	}
	low := open
	if close < low {
		low = close
	}

	return &shared.Candlestick{
		Open:       open,
		High:       high + 1,
		Low:        low - 1,
		Close:      close,
		Volume:     1,
		Time:       seriesStart.Add(time.Duration(idx) * time.Minute * 30),
		Complete:   true,
		Instrument: "EUR_USD",
		Timeframe:  shared.ThirtyMinute,
	}
}

// patternSeries builds a series where three consecutive bear candles complete
// at index 5 and a bullish engulfing completes at index 6.
func patternSeries() []*shared.Candlestick {
	return []*shared.Candlestick{
		seriesCandle(0, 10, 11),
		seriesCandle(1, 11, 10),
		seriesCandle(2, 10, 9),
		seriesCandle(3, 9, 8),
		seriesCandle(4, 8, 7),
		seriesCandle(5, 7, 6),
		seriesCandle(6, 6, 8),
		seriesCandle(7, 8, 9),
	}
}

func testConfig(strategies []strategy.Strategy, source shared.CandleSource) *BacktesterConfig {
	logger := log.With().Str("component", "backtester").Logger()
	return &BacktesterConfig{
		Instrument: "EUR_USD",
		Timeframe:  shared.ThirtyMinute,
		Start:      seriesStart,
		End:        seriesStart.Add(time.Hour * 24),
		Strategies: strategies,
		Source:     source,
		Logger:     &logger,
	}
}

func TestBacktesterConfigValidate(t *testing.T) {
	strat := strategy.NewThreeBear("EUR_USD", shared.ThirtyMinute)
	source := &sourceMock{}

	tests := []struct {
		name    string
		modify  func(cfg *BacktesterConfig)
		wantErr bool
	}{
		{
			name:    "valid config returns nil",
			modify:  func(cfg *BacktesterConfig) {},
			wantErr: false,
		},
		{
			name:    "missing instrument",
			modify:  func(cfg *BacktesterConfig) { cfg.Instrument = "" },
			wantErr: true,
		},
		{
			name:    "missing strategies",
			modify:  func(cfg *BacktesterConfig) { cfg.Strategies = nil },
			wantErr: true,
		},
		{
			name:    "missing source",
			modify:  func(cfg *BacktesterConfig) { cfg.Source = nil },
			wantErr: true,
		},
		{
			name:    "missing logger",
			modify:  func(cfg *BacktesterConfig) { cfg.Logger = nil },
			wantErr: true,
		},
		{
			name:    "zero range",
			modify:  func(cfg *BacktesterConfig) { cfg.Start = time.Time{} },
			wantErr: true,
		},
		{
			name:    "inverted range",
			modify:  func(cfg *BacktesterConfig) { cfg.Start, cfg.End = cfg.End, cfg.Start },
			wantErr: true,
		},
		{
			name: "strategy bound to another instrument",
			modify: func(cfg *BacktesterConfig) {
				cfg.Strategies = []strategy.Strategy{strategy.NewThreeBear("USD_JPY", shared.ThirtyMinute)}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig([]strategy.Strategy{strat}, source)
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBacktesterRun(t *testing.T) {
	strategies := []strategy.Strategy{
		strategy.NewThreeBear("EUR_USD", shared.ThirtyMinute),
		strategy.NewEngulfing("EUR_USD", shared.ThirtyMinute),
	}
	source := &sourceMock{candles: patternSeries()}

	bt, err := NewBacktester(testConfig(strategies, source))
	assert.NoError(t, err)

	report, err := bt.Run(context.Background())
	assert.NoError(t, err)

	// Ensure both strategies report their triggers in chronological order.
	// Evaluation starts once the largest requested lookback exists, so the
	// first eligible candle is at index 5.
	assert.Equal(t, len(report.Records), 2)
	assert.Equal(t, report.Records[0].Strategy, strategy.ThreeBearName)
	assert.Equal(t, report.Records[0].Index, 5)
	assert.Equal(t, report.Records[0].Time, seriesCandle(5, 0, 0).Time)
	assert.Equal(t, report.Records[1].Strategy, strategy.EngulfingName)
	assert.Equal(t, report.Records[1].Index, 6)
	assert.Equal(t, report.Triggers[strategy.ThreeBearName], 1)
	assert.Equal(t, report.Triggers[strategy.EngulfingName], 1)
	assert.Equal(t, report.Candles, 8)

	// Ensure the report summary names both strategies.
	summary := report.String()
	assert.True(t, strings.Contains(summary, strategy.ThreeBearName))
	assert.True(t, strings.Contains(summary, strategy.EngulfingName))
}

func TestBacktesterDeterminism(t *testing.T) {
	// Ensure two backtest runs with identical inputs produce identical
	// reports.
	run := func() *Report {
		strategies := []strategy.Strategy{
			strategy.NewThreeBear("EUR_USD", shared.ThirtyMinute),
			strategy.NewEngulfing("EUR_USD", shared.ThirtyMinute),
		}
		source := &sourceMock{candles: patternSeries()}

		bt, err := NewBacktester(testConfig(strategies, source))
		assert.NoError(t, err)

		report, err := bt.Run(context.Background())
		assert.NoError(t, err)
		return report
	}

	first := run()
	second := run()
	assert.Equal(t, cmp.Diff(first, second), "")

	// Ensure the CSV renderings are byte identical as well.
	var firstCSV, secondCSV bytes.Buffer
	assert.NoError(t, first.WriteCSV(&firstCSV))
	assert.NoError(t, second.WriteCSV(&secondCSV))
	assert.Equal(t, firstCSV.String(), secondCSV.String())
}

// tickProviderMock serves the latest completed candles of a fixed series up
// to a tick position, mimicking a live feed advancing one candle per tick.
type tickProviderMock struct {
	series []*shared.Candlestick
	upto   int
}

func (m *tickProviderMock) Window(_ context.Context, instrument string, timeframe shared.Timeframe, n int) ([]*shared.Candlestick, error) {
	if m.upto == 0 {
		return nil, window.ErrInsufficientData
	}

	avail := m.series[:m.upto]
	if len(avail) > n {
		avail = avail[len(avail)-n:]
	}

	return avail, nil
}

type alertSinkMock struct {
	alerts []*shared.AlertPayload
}

func (m *alertSinkMock) Notify(_ context.Context, alert *shared.AlertPayload) error {
	m.alerts = append(m.alerts, alert)
	return nil
}

func TestBacktesterMatchesLiveReplay(t *testing.T) {
	logger := log.With().Str("component", "runner").Logger()
	series := patternSeries()

	// Drive a live runner through the series, one completed candle per tick.
	provider := &tickProviderMock{series: series}
	sink := &alertSinkMock{}
	r, err := runner.NewRunner(&runner.RunnerConfig{
		Strategies:   []strategy.Strategy{strategy.NewThreeBear("EUR_USD", shared.ThirtyMinute)},
		Provider:     provider,
		Sink:         sink,
		PollInterval: time.Minute,
		JobScheduler: gocron.NewScheduler(time.UTC),
		Logger:       &logger,
	})
	assert.NoError(t, err)

	for tick := 1; tick <= len(series); tick++ {
		provider.upto = tick
		r.RunChecks(context.Background())
	}

	// Replay the identical history in bulk through the backtester.
	strategies := []strategy.Strategy{strategy.NewThreeBear("EUR_USD", shared.ThirtyMinute)}
	bt, err := NewBacktester(testConfig(strategies, &sourceMock{candles: series}))
	assert.NoError(t, err)

	report, err := bt.Run(context.Background())
	assert.NoError(t, err)

	// Ensure the bulk replay triggers on exactly the candle times that were
	// alerted live, in the same order.
	assert.Equal(t, len(report.Records), len(sink.alerts))
	for idx := range report.Records {
		assert.Equal(t, report.Records[idx].Time, sink.alerts[idx].Time)
		assert.Equal(t, report.Records[idx].Strategy, sink.alerts[idx].Strategy)
		assert.Equal(t, report.Records[idx].Reason, sink.alerts[idx].Reason)
	}
}

func TestBacktesterFiltersSeries(t *testing.T) {
	// Ensure incomplete and duplicate candles are dropped before the replay.
	series := patternSeries()
	incomplete := seriesCandle(8, 9, 10)
	incomplete.Complete = false
	duplicate := seriesCandle(5, 7, 6)
	series = append(series, incomplete, duplicate)

	strategies := []strategy.Strategy{strategy.NewThreeBear("EUR_USD", shared.ThirtyMinute)}
	source := &sourceMock{candles: series}

	bt, err := NewBacktester(testConfig(strategies, source))
	assert.NoError(t, err)

	report, err := bt.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, report.Candles, 8)
	// With only the three bear strategy configured, evaluation starts at
	// index 3 and the bear run triggers at indices 3, 4 and 5.
	assert.Equal(t, report.Triggers[strategy.ThreeBearName], 3)

	// Ensure an empty series fails the run.
	source.candles = nil
	bt, err = NewBacktester(testConfig(strategies, source))
	assert.NoError(t, err)
	_, err = bt.Run(context.Background())
	assert.Error(t, err)
}
