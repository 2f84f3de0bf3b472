package strategy

import (
	"testing"

	"github.com/avhal/scout/shared"
	"github.com/peterldowns/testy/assert"
)

func TestRegistry(t *testing.T) {
	// Ensure every built-in strategy is registered.
	names := RegisteredNames()
	assert.Equal(t, names, []string{EngulfingName, SRBreakoutName, ThreeBearName})

	// Ensure registered names resolve to constructed strategies.
	strat, err := New(EngulfingName, "EUR_USD", shared.ThirtyMinute)
	assert.NoError(t, err)
	assert.Equal(t, strat.Name(), EngulfingName)
	assert.Equal(t, strat.Instrument(), "EUR_USD")

	// Ensure unknown names return an error.
	_, err = New("unknown", "EUR_USD", shared.ThirtyMinute)
	assert.Error(t, err)
}

func TestNewSet(t *testing.T) {
	// Ensure the reserved name "all" expands to every registered strategy.
	set, err := NewSet([]string{AllStrategies}, "EUR_USD", shared.ThirtyMinute)
	assert.NoError(t, err)
	assert.Equal(t, len(set), len(RegisteredNames()))

	// Ensure explicit names resolve in order.
	set, err = NewSet([]string{ThreeBearName, EngulfingName}, "EUR_USD", shared.ThirtyMinute)
	assert.NoError(t, err)
	assert.Equal(t, len(set), 2)
	assert.Equal(t, set[0].Name(), ThreeBearName)
	assert.Equal(t, set[1].Name(), EngulfingName)

	// Ensure "all" cannot be combined with other names.
	_, err = NewSet([]string{AllStrategies, EngulfingName}, "EUR_USD", shared.ThirtyMinute)
	assert.Error(t, err)

	// Ensure an unknown name in the set returns an error.
	_, err = NewSet([]string{EngulfingName, "unknown"}, "EUR_USD", shared.ThirtyMinute)
	assert.Error(t, err)

	// Ensure an empty set returns an error.
	_, err = NewSet(nil, "EUR_USD", shared.ThirtyMinute)
	assert.Error(t, err)
}
