package strategy

import (
	"fmt"
	"sort"

	"github.com/avhal/scout/shared"
)

const (
	// AllStrategies is the reserved name expanding to every registered
	// strategy.
	AllStrategies = "all"
)

// Constructor initializes a strategy bound to the provided instrument and
// timeframe.
type Constructor func(instrument string, timeframe shared.Timeframe) Strategy

// registry maps strategy names to their constructors. New strategies are
// added here to become resolvable at configuration time.
var registry = map[string]Constructor{
	EngulfingName: func(instrument string, timeframe shared.Timeframe) Strategy {
		return NewEngulfing(instrument, timeframe)
	},
	SRBreakoutName: func(instrument string, timeframe shared.Timeframe) Strategy {
		return NewSRBreakout(instrument, timeframe)
	},
	ThreeBearName: func(instrument string, timeframe shared.Timeframe) Strategy {
		return NewThreeBear(instrument, timeframe)
	},
}

// RegisteredNames returns the names of all registered strategies in a stable
// order.
func RegisteredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// New resolves the provided strategy name and constructs it for the provided
// instrument and timeframe.
func New(name string, instrument string, timeframe shared.Timeframe) (Strategy, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy name: %s", name)
	}

	return constructor(instrument, timeframe), nil
}

// NewSet resolves the provided strategy names for the provided instrument and
// timeframe. The reserved name "all" expands to every registered strategy and
// cannot be combined with other names.
func NewSet(names []string, instrument string, timeframe shared.Timeframe) ([]Strategy, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no strategy names provided")
	}

	expanded := names
	for idx := range names {
		if names[idx] == AllStrategies {
			if len(names) > 1 {
				return nil, fmt.Errorf("strategy name %q cannot be combined with other names", AllStrategies)
			}

			expanded = RegisteredNames()
		}
	}

	set := make([]Strategy, 0, len(expanded))
	for idx := range expanded {
		strat, err := New(expanded[idx], instrument, timeframe)
		if err != nil {
			return nil, err
		}

		set = append(set, strat)
	}

	return set, nil
}
