package window

import (
	"context"
	"fmt"

	"github.com/avhal/scout/shared"
)

// LiveProviderConfig represents the configuration for the live window
// provider.
type LiveProviderConfig struct {
	// Source represents the upstream candle source.
	Source shared.CandleSource
}

// LiveProvider supplies windows ending at the most recently completed candle
// by fetching from the upstream candle source on demand.
type LiveProvider struct {
	cfg *LiveProviderConfig
}

// Ensure the live provider implements the Provider interface.
var _ Provider = (*LiveProvider)(nil)

// NewLiveProvider initializes a new live window provider.
func NewLiveProvider(cfg *LiveProviderConfig) (*LiveProvider, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("candle source cannot be nil")
	}

	return &LiveProvider{cfg: cfg}, nil
}

// Window returns up to n of the latest completed candles for the provided
// instrument and timeframe. In-progress candles returned by the source are
// excluded.
func (p *LiveProvider) Window(ctx context.Context, instrument string, timeframe shared.Timeframe, n int) ([]*shared.Candlestick, error) {
	if n <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", n)
	}

	candles, err := p.cfg.Source.FetchLatest(ctx, instrument, timeframe, n)
	if err != nil {
		return nil, fmt.Errorf("fetching latest candles for %s (%s): %w",
			instrument, timeframe.String(), err)
	}

	completed := make([]*shared.Candlestick, 0, len(candles))
	for idx := range candles {
		if candles[idx].Complete {
			completed = append(completed, candles[idx])
		}
	}

	if len(completed) == 0 {
		return nil, ErrInsufficientData
	}

	if len(completed) > n {
		completed = completed[len(completed)-n:]
	}

	return completed, nil
}
