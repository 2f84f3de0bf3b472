package window

import (
	"context"
	"fmt"

	"github.com/avhal/scout/shared"
)

// SeriesProvider supplies windows from a preloaded historical candle series.
// Its cursor is a simulated point in time advancing monotonically through
// the series, so replays are fully deterministic and make no external calls.
type SeriesProvider struct {
	instrument string
	timeframe  shared.Timeframe
	series     []*shared.Candlestick
	cursor     int
}

// Ensure the series provider implements the Provider interface.
var _ Provider = (*SeriesProvider)(nil)

// NewSeriesProvider initializes a new series window provider over the
// provided candle series. The cursor starts before the first candle and has
// to be advanced before windows can be requested.
func NewSeriesProvider(instrument string, timeframe shared.Timeframe, series []*shared.Candlestick) (*SeriesProvider, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("candle series cannot be empty")
	}

	return &SeriesProvider{
		instrument: instrument,
		timeframe:  timeframe,
		series:     series,
		cursor:     -1,
	}, nil
}

// Advance moves the cursor to the next candle in the series. It returns
// false once the series is exhausted.
func (p *SeriesProvider) Advance() bool {
	if p.cursor+1 >= len(p.series) {
		return false
	}

	p.cursor++
	return true
}

// SeekTo positions the cursor at the provided series index.
func (p *SeriesProvider) SeekTo(idx int) error {
	if idx < 0 || idx >= len(p.series) {
		return fmt.Errorf("cursor index %d out of series range [0, %d)", idx, len(p.series))
	}

	p.cursor = idx
	return nil
}

// Cursor returns the current cursor index.
func (p *SeriesProvider) Cursor() int {
	return p.cursor
}

// Current returns the candle at the current cursor position.
func (p *SeriesProvider) Current() *shared.Candlestick {
	if p.cursor < 0 || p.cursor >= len(p.series) {
		return nil
	}

	return p.series[p.cursor]
}

// Size returns the number of candles in the series.
func (p *SeriesProvider) Size() int {
	return len(p.series)
}

// Window returns the n candles ending at the cursor position. It signals
// insufficient data when fewer than n candles exist up to the cursor.
func (p *SeriesProvider) Window(_ context.Context, instrument string, timeframe shared.Timeframe, n int) ([]*shared.Candlestick, error) {
	if instrument != p.instrument || timeframe != p.timeframe {
		return nil, fmt.Errorf("series provider serves %s (%s), got request for %s (%s)",
			p.instrument, p.timeframe.String(), instrument, timeframe.String())
	}

	if n <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", n)
	}

	if p.cursor < 0 || p.cursor+1 < n {
		return nil, ErrInsufficientData
	}

	return p.series[p.cursor+1-n : p.cursor+1], nil
}
