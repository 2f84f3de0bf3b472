package strategy

import (
	"github.com/avhal/scout/shared"
)

const (
	// ThreeBearName is the registered name of the three bear candles
	// strategy.
	ThreeBearName = "threebear"
	// threeBearRequiredCandles pads the window with a lookback candle beyond
	// the three the pattern logic inspects.
	threeBearRequiredCandles = 4
	// threeBearMinCandles is the minimum completed candles for a meaningful
	// verdict.
	threeBearMinCandles = 3
)

// ThreeBear detects three consecutive bearish candles ending on the newest
// completed candle.
type ThreeBear struct {
	base
}

// Ensure ThreeBear implements the Strategy interface.
var _ Strategy = (*ThreeBear)(nil)

// NewThreeBear initializes a three bear candles strategy for the provided
// instrument and timeframe.
func NewThreeBear(instrument string, timeframe shared.Timeframe) *ThreeBear {
	return &ThreeBear{
		base: base{
			name:       ThreeBearName,
			instrument: instrument,
			timeframe:  timeframe,
			required:   threeBearRequiredCandles,
			minimum:    threeBearMinCandles,
		},
	}
}

// Check evaluates the three consecutive bear candles condition on the
// provided window.
func (t *ThreeBear) Check(window []*shared.Candlestick) Verdict {
	for idx := len(window) - 3; idx < len(window); idx++ {
		if window[idx].FetchSentiment() != shared.Bearish {
			return Verdict{Reason: "no three consecutive bear candles found"}
		}
	}

	return Verdict{
		Triggered: true,
		Reason:    "3 Consecutive Bear Candles Detected.",
	}
}
