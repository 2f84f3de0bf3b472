package strategy

import (
	"fmt"

	"github.com/avhal/scout/shared"
)

const (
	// SRBreakoutName is the registered name of the support/resistance
	// breakout strategy.
	SRBreakoutName = "srbreakout"
	// srBreakoutMinCandles covers fifty candles of level history plus the
	// breakout candidate.
	srBreakoutMinCandles = 51
	// srBreakoutRequiredCandles requests one extra candle to account for an
	// in-progress candle being excluded by the window provider.
	srBreakoutRequiredCandles = srBreakoutMinCandles + 1
)

// SRBreakout detects support and resistance levels from two-candle reversal
// structure and checks whether the newest completed candle closes across the
// nearest established level.
type SRBreakout struct {
	base
}

// Ensure SRBreakout implements the Strategy interface.
var _ Strategy = (*SRBreakout)(nil)

// NewSRBreakout initializes a support/resistance breakout strategy for the
// provided instrument and timeframe.
func NewSRBreakout(instrument string, timeframe shared.Timeframe) *SRBreakout {
	return &SRBreakout{
		base: base{
			name:       SRBreakoutName,
			instrument: instrument,
			timeframe:  timeframe,
			required:   srBreakoutRequiredCandles,
			minimum:    srBreakoutMinCandles,
		},
	}
}

// Check evaluates the breakout condition on the provided window.
func (s *SRBreakout) Check(window []*shared.Candlestick) Verdict {
	breakoutCandle := window[len(window)-1]
	lastClose := breakoutCandle.Close

	// All candles before the breakout candidate form the level history.
	history := window[:len(window)-1]

	var supportLevels []float64
	var resistanceLevels []float64

	for idx := 0; idx < len(history)-1; idx++ {
		prev := history[idx]
		curr := history[idx+1]

		prevSentiment := prev.FetchSentiment()
		currSentiment := curr.FetchSentiment()

		// A bear candle followed by a bull candle marks support at the bear
		// candle's close.
		if prevSentiment == shared.Bearish && currSentiment == shared.Bullish {
			supportLevels = append(supportLevels, prev.Close)
		}

		// A bull candle followed by a bear candle marks resistance at the
		// bull candle's close.
		if prevSentiment == shared.Bullish && currSentiment == shared.Bearish {
			resistanceLevels = append(resistanceLevels, prev.Close)
		}
	}

	// Consolidate to the lowest support and the closest resistance.
	var bestSupport, bestResistance float64
	var hasSupport, hasResistance bool
	for idx := range supportLevels {
		if !hasSupport || supportLevels[idx] < bestSupport {
			bestSupport = supportLevels[idx]
			hasSupport = true
		}
	}
	for idx := range resistanceLevels {
		if !hasResistance || resistanceLevels[idx] < bestResistance {
			bestResistance = resistanceLevels[idx]
			hasResistance = true
		}
	}

	// A breakout has to clear the level by a pip to be considered
	// significant.
	if hasResistance && lastClose > bestResistance+PipSize {
		return Verdict{
			Triggered: true,
			Reason:    fmt.Sprintf("RESISTANCE Breakout detected at R=%.5f (Close=%.5f).", bestResistance, lastClose),
		}
	}

	if hasSupport && lastClose < bestSupport-PipSize {
		return Verdict{
			Triggered: true,
			Reason:    fmt.Sprintf("SUPPORT Breakout detected at S=%.5f (Close=%.5f).", bestSupport, lastClose),
		}
	}

	return Verdict{Reason: "no support/resistance breakout found"}
}
