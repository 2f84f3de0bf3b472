package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for parsing backtest range dates.
	DateLayout = "2006-01-02T15:04:05Z"
)

// Timeframe represents the market data time period.
type Timeframe int

const (
	OneMinute Timeframe = iota
	FiveMinute
	FifteenMinute
	ThirtyMinute
	OneHour
	FourHour
	OneDay
)

// String stringifies the provided timeframe using its granularity name.
func (t Timeframe) String() string {
	switch t {
	case OneMinute:
		return "M1"
	case FiveMinute:
		return "M5"
	case FifteenMinute:
		return "M15"
	case ThirtyMinute:
		return "M30"
	case OneHour:
		return "H1"
	case FourHour:
		return "H4"
	case OneDay:
		return "D"
	default:
		return "unknown"
	}
}

// Duration returns the interval covered by one candle of the timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case OneMinute:
		return time.Minute
	case FiveMinute:
		return time.Minute * 5
	case FifteenMinute:
		return time.Minute * 15
	case ThirtyMinute:
		return time.Minute * 30
	case OneHour:
		return time.Hour
	case FourHour:
		return time.Hour * 4
	case OneDay:
		return time.Hour * 24
	default:
		return 0
	}
}

// ParseTimeframe parses a timeframe from its granularity name.
func ParseTimeframe(granularity string) (Timeframe, error) {
	switch granularity {
	case "M1":
		return OneMinute, nil
	case "M5":
		return FiveMinute, nil
	case "M15":
		return FifteenMinute, nil
	case "M30":
		return ThirtyMinute, nil
	case "H1":
		return OneHour, nil
	case "H4":
		return FourHour, nil
	case "D":
		return OneDay, nil
	default:
		return 0, fmt.Errorf("unknown timeframe granularity: %s", granularity)
	}
}
