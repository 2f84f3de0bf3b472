package strategy

import (
	"testing"

	"github.com/avhal/scout/shared"
	"github.com/peterldowns/testy/assert"
)

func TestEvaluate(t *testing.T) {
	strat := NewThreeBear("EUR_USD", shared.ThirtyMinute)
	state := NewState()

	// Ensure a window below the minimum completed candles is not evaluated
	// and leaves the state untouched.
	short := []*shared.Candlestick{
		newCandle(10, 9, candleTime(0)),
		newCandle(9, 8, candleTime(1)),
	}
	verdict, evaluated := Evaluate(strat, state, short)
	assert.False(t, evaluated)
	assert.False(t, verdict.Triggered)
	assert.True(t, state.LastEvaluated.IsZero())

	// Ensure a satisfied window is evaluated and advances the state to the
	// newest candle time.
	window := []*shared.Candlestick{
		newCandle(9, 10, candleTime(0)),
		newCandle(10, 9, candleTime(1)),
		newCandle(9, 8, candleTime(2)),
		newCandle(8, 7, candleTime(3)),
	}
	verdict, evaluated = Evaluate(strat, state, window)
	assert.True(t, evaluated)
	assert.True(t, verdict.Triggered)
	assert.Equal(t, state.LastEvaluated, candleTime(3))

	// Ensure presenting the same newest candle again is skipped and the
	// state is unchanged.
	verdict, evaluated = Evaluate(strat, state, window)
	assert.False(t, evaluated)
	assert.False(t, verdict.Triggered)
	assert.Equal(t, state.LastEvaluated, candleTime(3))

	// Ensure a new candle is evaluated and the state advances even when the
	// verdict is negative.
	window = append(window[1:], newCandle(7, 8, candleTime(4)))
	verdict, evaluated = Evaluate(strat, state, window)
	assert.True(t, evaluated)
	assert.False(t, verdict.Triggered)
	assert.Equal(t, state.LastEvaluated, candleTime(4))
}
