package fetch

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/avhal/scout/shared"
	"github.com/tidwall/gjson"
)

// FileSourceConfig represents the configuration for the file candle source.
type FileSourceConfig struct {
	// FilePath is the filepath to the historic candle data.
	FilePath string
}

// FileSource serves candles from a JSON file, keyed by timeframe granularity:
//
//	{"instrument": "EUR_USD", "M30": [{"time": …, "open": …, …}, …]}
//
// It backs offline backtests where replays have to be reproducible without
// any network access.
type FileSource struct {
	cfg        *FileSourceConfig
	instrument string
	candles    map[shared.Timeframe][]*shared.Candlestick
}

// Ensure the file source implements the CandleSource interface.
var _ shared.CandleSource = (*FileSource)(nil)

// parseFileCandles parses candles from the provided json data.
func parseFileCandles(data []gjson.Result, instrument string, timeframe shared.Timeframe) ([]*shared.Candlestick, error) {
	candles := make([]*shared.Candlestick, 0, len(data))

	for idx := range data {
		candle := &shared.Candlestick{
			Open:       data[idx].Get("open").Float(),
			High:       data[idx].Get("high").Float(),
			Low:        data[idx].Get("low").Float(),
			Close:      data[idx].Get("close").Float(),
			Volume:     data[idx].Get("volume").Float(),
			Complete:   data[idx].Get("complete").Bool(),
			Instrument: instrument,
			Timeframe:  timeframe,
		}

		dt, err := time.Parse(time.RFC3339, data[idx].Get("time").String())
		if err != nil {
			return nil, fmt.Errorf("parsing candle time: %w", err)
		}

		candle.Time = dt
		candles = append(candles, candle)
	}

	return candles, nil
}

// NewFileSource initializes a new file candle source from the provided
// configuration.
func NewFileSource(cfg *FileSourceConfig) (*FileSource, error) {
	readb, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading candle data from file with path '%s': %w", cfg.FilePath, err)
	}

	b := gjson.ParseBytes(readb)

	instrument := b.Get("instrument").String()
	if instrument == "" {
		return nil, fmt.Errorf("candle data file '%s' has no instrument", cfg.FilePath)
	}

	source := &FileSource{
		cfg:        cfg,
		instrument: instrument,
		candles:    make(map[shared.Timeframe][]*shared.Candlestick),
	}

	timeframes := []shared.Timeframe{shared.OneMinute, shared.FiveMinute, shared.FifteenMinute,
		shared.ThirtyMinute, shared.OneHour, shared.FourHour, shared.OneDay}
	for idx := range timeframes {
		timeframe := timeframes[idx]

		data := b.Get(timeframe.String()).Array()
		if len(data) == 0 {
			continue
		}

		candles, err := parseFileCandles(data, instrument, timeframe)
		if err != nil {
			return nil, fmt.Errorf("parsing %s candles: %w", timeframe.String(), err)
		}

		slices.SortFunc(candles, func(a, b *shared.Candlestick) int {
			return a.Time.Compare(b.Time)
		})

		source.candles[timeframe] = candles
	}

	if len(source.candles) == 0 {
		return nil, fmt.Errorf("candle data file '%s' has no candles", cfg.FilePath)
	}

	return source, nil
}

// Instrument returns the instrument served by the file source.
func (f *FileSource) Instrument() string {
	return f.instrument
}

// fetchSeries returns the loaded series for the provided instrument and
// timeframe.
func (f *FileSource) fetchSeries(instrument string, timeframe shared.Timeframe) ([]*shared.Candlestick, error) {
	if instrument != f.instrument {
		return nil, fmt.Errorf("file source serves %s, got request for %s", f.instrument, instrument)
	}

	series, ok := f.candles[timeframe]
	if !ok {
		return nil, fmt.Errorf("file source has no %s candles for %s", timeframe.String(), instrument)
	}

	return series, nil
}

// FetchLatest fetches the latest count candles for the provided instrument
// and timeframe, ordered by time ascending.
func (f *FileSource) FetchLatest(_ context.Context, instrument string, timeframe shared.Timeframe, count int) ([]*shared.Candlestick, error) {
	series, err := f.fetchSeries(instrument, timeframe)
	if err != nil {
		return nil, err
	}

	if count < len(series) {
		series = series[len(series)-count:]
	}

	return series, nil
}

// FetchRange fetches all candles for the provided instrument and timeframe
// within the provided time range, ordered by time ascending.
func (f *FileSource) FetchRange(_ context.Context, instrument string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]*shared.Candlestick, error) {
	series, err := f.fetchSeries(instrument, timeframe)
	if err != nil {
		return nil, err
	}

	ranged := make([]*shared.Candlestick, 0, len(series))
	for idx := range series {
		at := series[idx].Time
		if at.Before(start) {
			continue
		}
		if !end.IsZero() && at.After(end) {
			continue
		}

		ranged = append(ranged, series[idx])
	}

	return ranged, nil
}
