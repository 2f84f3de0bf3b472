// Package window supplies chronologically ordered candle windows to
// strategies, either from a live candle source or from a preloaded
// historical series.
package window

import (
	"context"
	"errors"

	"github.com/avhal/scout/shared"
)

// ErrInsufficientData indicates the provider cannot supply any usable window
// for the request. Orchestrators treat it as a skip condition, not a failure.
var ErrInsufficientData = errors.New("insufficient candle data")

// Provider defines the requirements for supplying candle windows.
type Provider interface {
	// Window returns up to n chronologically ordered candles for the
	// provided instrument and timeframe, the newest being the most recently
	// completed candle relative to the provider's cursor.
	Window(ctx context.Context, instrument string, timeframe shared.Timeframe, n int) ([]*shared.Candlestick, error)
}
