package shared

import (
	"time"

	"github.com/google/uuid"
)

// AlertPayload represents a triggered strategy alert handed to the alert sink.
type AlertPayload struct {
	ID         string
	Strategy   string
	Instrument string
	Timeframe  Timeframe
	// Time is the open time of the candle the strategy triggered on.
	Time   time.Time
	Reason string
}

// NewAlertPayload initializes a new alert payload.
func NewAlertPayload(strategy string, instrument string, timeframe Timeframe, time time.Time, reason string) *AlertPayload {
	return &AlertPayload{
		ID:         uuid.NewString(),
		Strategy:   strategy,
		Instrument: instrument,
		Timeframe:  timeframe,
		Time:       time,
		Reason:     reason,
	}
}
