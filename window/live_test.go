package window

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avhal/scout/shared"
	"github.com/peterldowns/testy/assert"
)

type sourceMock struct {
	fetchLatestCandles []*shared.Candlestick
	fetchLatestErr     error
	fetchRangeCandles  []*shared.Candlestick
	fetchRangeErr      error
}

func (m *sourceMock) FetchLatest(ctx context.Context, instrument string, timeframe shared.Timeframe, count int) ([]*shared.Candlestick, error) {
	return m.fetchLatestCandles, m.fetchLatestErr
}

func (m *sourceMock) FetchRange(ctx context.Context, instrument string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]*shared.Candlestick, error) {
	return m.fetchRangeCandles, m.fetchRangeErr
}

// seriesCandle creates a test candle idx intervals after a fixed start.
func seriesCandle(idx int, complete bool) *shared.Candlestick {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return &shared.Candlestick{
		Open:       float64(idx + 1),
		High:       float64(idx + 3),
		Low:        float64(idx),
		Close:      float64(idx + 2),
		Volume:     1,
		Time:       start.Add(time.Duration(idx) * time.Minute * 30),
		Complete:   complete,
		Instrument: "EUR_USD",
		Timeframe:  shared.ThirtyMinute,
	}
}

func TestLiveProvider(t *testing.T) {
	// Ensure the live provider requires a candle source.
	_, err := NewLiveProvider(&LiveProviderConfig{})
	assert.Error(t, err)

	// Ensure in-progress candles are excluded and the newest window entry is
	// the most recently completed candle.
	mock := &sourceMock{
		fetchLatestCandles: []*shared.Candlestick{
			seriesCandle(0, true),
			seriesCandle(1, true),
			seriesCandle(2, true),
			seriesCandle(3, false),
		},
	}
	provider, err := NewLiveProvider(&LiveProviderConfig{Source: mock})
	assert.NoError(t, err)

	candles, err := provider.Window(context.Background(), "EUR_USD", shared.ThirtyMinute, 4)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 3)
	assert.Equal(t, candles[len(candles)-1].Time, seriesCandle(2, true).Time)

	// Ensure a window request clamps to the newest n completed candles.
	candles, err = provider.Window(context.Background(), "EUR_USD", shared.ThirtyMinute, 2)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 2)
	assert.Equal(t, candles[0].Time, seriesCandle(1, true).Time)

	// Ensure a non-positive window size returns an error.
	_, err = provider.Window(context.Background(), "EUR_USD", shared.ThirtyMinute, 0)
	assert.Error(t, err)

	// Ensure a source with no completed candles signals insufficient data.
	mock.fetchLatestCandles = []*shared.Candlestick{seriesCandle(0, false)}
	_, err = provider.Window(context.Background(), "EUR_USD", shared.ThirtyMinute, 4)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	// Ensure source failures are surfaced.
	mock.fetchLatestErr = errors.New("fetch failed")
	_, err = provider.Window(context.Background(), "EUR_USD", shared.ThirtyMinute, 4)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInsufficientData))
}
