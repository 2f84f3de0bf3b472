package strategy

import (
	"fmt"

	"github.com/avhal/scout/shared"
)

const (
	// EngulfingName is the registered name of the engulfing strategy.
	EngulfingName = "engulfing"
	// engulfingRequiredCandles pads the window with lookback candles beyond
	// the four the pattern logic inspects.
	engulfingRequiredCandles = 6
	// engulfingMinCandles is the minimum completed candles for a meaningful
	// verdict.
	engulfingMinCandles = 4
)

// Engulfing detects an engulfing reversal: three consecutive candles sharing
// a direction followed by an opposing candle whose body engulfs the last of
// them.
type Engulfing struct {
	base
}

// Ensure Engulfing implements the Strategy interface.
var _ Strategy = (*Engulfing)(nil)

// NewEngulfing initializes an engulfing strategy for the provided instrument
// and timeframe.
func NewEngulfing(instrument string, timeframe shared.Timeframe) *Engulfing {
	return &Engulfing{
		base: base{
			name:       EngulfingName,
			instrument: instrument,
			timeframe:  timeframe,
			required:   engulfingRequiredCandles,
			minimum:    engulfingMinCandles,
		},
	}
}

// Check evaluates the engulfing pattern on the provided window.
func (e *Engulfing) Check(window []*shared.Candlestick) Verdict {
	// The newest completed candle is the engulfing candidate, the three
	// candles preceding it set the direction being reversed.
	first := window[len(window)-1]
	second := window[len(window)-2]
	third := window[len(window)-3]
	fourth := window[len(window)-4]

	secondSentiment := second.FetchSentiment()
	thirdSentiment := third.FetchSentiment()
	fourthSentiment := fourth.FetchSentiment()

	if secondSentiment == shared.Neutral || thirdSentiment == shared.Neutral ||
		fourthSentiment == shared.Neutral {
		return Verdict{Reason: "no engulfing pattern, doji in preceding candles"}
	}

	if secondSentiment != thirdSentiment || thirdSentiment != fourthSentiment {
		return Verdict{Reason: "no engulfing pattern, preceding candles lack a shared direction"}
	}

	firstSentiment := first.FetchSentiment()
	if firstSentiment == shared.Neutral {
		return Verdict{Reason: "no engulfing pattern, newest candle is a doji"}
	}

	if firstSentiment == secondSentiment {
		return Verdict{Reason: "no engulfing pattern, newest candle continues the preceding direction"}
	}

	if first.FetchBodySize() <= second.FetchBodySize() {
		return Verdict{Reason: "no engulfing pattern, newest candle body does not engulf the preceding body"}
	}

	return Verdict{
		Triggered: true,
		Reason:    fmt.Sprintf("Engulfing Pattern Found (%s Signal)", firstSentiment.String()),
	}
}
