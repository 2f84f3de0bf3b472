package shared

import (
	"context"
	"time"
)

// CandleSource defines the requirements for fetching instrument candle data.
type CandleSource interface {
	// FetchLatest fetches the latest count candles for the provided
	// instrument and timeframe, ordered by time ascending.
	FetchLatest(ctx context.Context, instrument string, timeframe Timeframe, count int) ([]*Candlestick, error)
	// FetchRange fetches all candles for the provided instrument and
	// timeframe within the provided time range, ordered by time ascending.
	FetchRange(ctx context.Context, instrument string, timeframe Timeframe, start time.Time, end time.Time) ([]*Candlestick, error)
}

// AlertSink defines the requirements for delivering strategy alerts.
type AlertSink interface {
	// Notify delivers the provided alert payload.
	Notify(ctx context.Context, alert *AlertPayload) error
}

// AlertStorer defines the requirements for persisting dispatched alerts.
type AlertStorer interface {
	// PersistAlert stores the provided alert payload.
	PersistAlert(ctx context.Context, alert *AlertPayload) error
}
