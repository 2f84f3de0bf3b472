package strategy

import (
	"fmt"

	"github.com/avhal/scout/shared"
)

const (
	// PipSize is the value of one pip used for breakout buffers.
	// Adjust for instruments quoted with a different pip position.
	PipSize = 0.01
)

// Verdict represents the outcome of one strategy evaluation.
type Verdict struct {
	// Triggered indicates whether the strategy's pattern condition holds.
	Triggered bool
	// Reason is a human readable explanation for the verdict. It is
	// populated for both positive and negative verdicts.
	Reason string
}

// Strategy defines the requirements for a candle pattern detection rule.
// A strategy is a pure evaluator over the window passed to it per call, it
// holds no candle data and no evaluation state of its own.
type Strategy interface {
	// Name returns the registered name of the strategy.
	Name() string
	// Instrument returns the instrument the strategy is bound to.
	Instrument() string
	// Timeframe returns the timeframe the strategy is bound to.
	Timeframe() shared.Timeframe
	// RequiredCandles returns the total window size to request from the
	// window provider.
	RequiredCandles() int
	// MinRequiredCompletedCandles returns the minimum number of completed
	// candles needed for the strategy logic to produce a meaningful verdict.
	MinRequiredCompletedCandles() int
	// Check evaluates the strategy's pattern condition on the provided
	// window. The newest completed candle is the last element of the window.
	Check(window []*shared.Candlestick) Verdict
}

// Key returns the unique evaluation state key for the provided strategy.
func Key(s Strategy) string {
	return fmt.Sprintf("%s:%s:%s", s.Name(), s.Instrument(), s.Timeframe().String())
}
