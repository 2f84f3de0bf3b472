package strategy

import (
	"time"

	"github.com/avhal/scout/shared"
)

// State tracks the evaluation progress of one strategy for one instrument
// and timeframe. It is owned exclusively by the orchestrator driving the
// strategy, never by the strategy itself, so backtests can run with fresh
// state without touching a live run.
type State struct {
	// LastEvaluated is the open time of the last candle the strategy was
	// evaluated on. The zero value indicates no evaluation has happened yet.
	LastEvaluated time.Time
}

// NewState initializes a new evaluation state.
func NewState() *State {
	return &State{}
}

// Evaluate runs the provided strategy on the provided window, enforcing the
// orchestrator-side preconditions. It returns the verdict and whether the
// strategy was actually invoked.
//
// The strategy is not invoked when the window has fewer completed candles
// than the strategy requires, or when the newest candle in the window was
// already evaluated. On invocation the state's last evaluated time is
// advanced unconditionally, whether or not the verdict is positive, so the
// same candle is never evaluated or alerted on twice.
//
// Both the live runner and the backtester drive their evaluations through
// this exact step, which is what keeps backtest results predictive of live
// behaviour.
func Evaluate(s Strategy, state *State, window []*shared.Candlestick) (Verdict, bool) {
	if len(window) < s.MinRequiredCompletedCandles() {
		return Verdict{Reason: "insufficient completed candles"}, false
	}

	newest := window[len(window)-1]
	if !state.LastEvaluated.IsZero() && newest.Time.Equal(state.LastEvaluated) {
		return Verdict{Reason: "candle already evaluated"}, false
	}

	verdict := s.Check(window)
	state.LastEvaluated = newest.Time

	return verdict, true
}
