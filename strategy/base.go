package strategy

import (
	"github.com/avhal/scout/shared"
)

// base carries the immutable attributes shared by the built-in strategies.
// Constructing a strategy binds it to exactly one instrument and timeframe
// for its lifetime.
type base struct {
	name       string
	instrument string
	timeframe  shared.Timeframe
	required   int
	minimum    int
}

// Name returns the registered name of the strategy.
func (b *base) Name() string {
	return b.name
}

// Instrument returns the instrument the strategy is bound to.
func (b *base) Instrument() string {
	return b.instrument
}

// Timeframe returns the timeframe the strategy is bound to.
func (b *base) Timeframe() shared.Timeframe {
	return b.timeframe
}

// RequiredCandles returns the total window size to request.
func (b *base) RequiredCandles() int {
	return b.required
}

// MinRequiredCompletedCandles returns the minimum completed candles needed.
func (b *base) MinRequiredCompletedCandles() int {
	return b.minimum
}
