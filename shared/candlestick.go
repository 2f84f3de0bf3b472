package shared

import (
	"math"
	"time"
)

// Sentiment represents the candlestick sentiment.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// String stringifies the provided sentiment.
func (s Sentiment) String() string {
	switch s {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// Candlestick represents a unit candlestick for an instrument. Once fetched
// from a candle source it is never mutated.
type Candlestick struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time

	// Complete indicates whether the candle's interval has fully elapsed.
	// Only complete candles are eligible for strategy evaluation.
	Complete bool

	// Metadata fields.
	Instrument string
	Timeframe  Timeframe
}

// FetchSentiment returns the provided candlestick's sentiment.
func (c *Candlestick) FetchSentiment() Sentiment {
	sentiment := c.Close - c.Open
	switch {
	case sentiment < 0:
		return Bearish
	case sentiment > 0:
		return Bullish
	default:
		return Neutral
	}
}

// FetchBodySize returns the absolute size of the candlestick's body.
func (c *Candlestick) FetchBodySize() float64 {
	return math.Abs(c.Close - c.Open)
}
