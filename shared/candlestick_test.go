package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestFetchSentiment(t *testing.T) {
	// Ensure a candle closing above its open is bullish.
	bull := &Candlestick{Open: 5, Close: 8, High: 9, Low: 4}
	assert.Equal(t, bull.FetchSentiment(), Bullish)

	// Ensure a candle closing below its open is bearish.
	bear := &Candlestick{Open: 8, Close: 5, High: 9, Low: 4}
	assert.Equal(t, bear.FetchSentiment(), Bearish)

	// Ensure a candle closing at its open is neutral.
	doji := &Candlestick{Open: 5, Close: 5, High: 6, Low: 4}
	assert.Equal(t, doji.FetchSentiment(), Neutral)

	// Ensure sentiments stringify as expected.
	assert.Equal(t, Bullish.String(), "bullish")
	assert.Equal(t, Bearish.String(), "bearish")
	assert.Equal(t, Neutral.String(), "neutral")
}

func TestFetchBodySize(t *testing.T) {
	// Ensure body size is the absolute open to close distance.
	bull := &Candlestick{Open: 5, Close: 8}
	assert.Equal(t, bull.FetchBodySize(), float64(3))

	bear := &Candlestick{Open: 8, Close: 5}
	assert.Equal(t, bear.FetchBodySize(), float64(3))

	doji := &Candlestick{Open: 5, Close: 5}
	assert.Equal(t, doji.FetchBodySize(), float64(0))
}
