package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avhal/scout/shared"
	"github.com/tidwall/gjson"
)

const (
	// PracticeBaseURL is the OANDA v20 REST endpoint for practice accounts.
	PracticeBaseURL = "https://api-fxpractice.oanda.com"
	// TradeBaseURL is the OANDA v20 REST endpoint for live accounts.
	TradeBaseURL = "https://api-fxtrade.oanda.com"

	// candleTimeLayout is the format layout of candle times in OANDA
	// responses.
	candleTimeLayout = time.RFC3339
)

// OandaConfig represents the configuration for the OANDA client.
type OandaConfig struct {
	// APIKey is the OANDA API key.
	APIKey string
	// BaseURL is the OANDA REST endpoint.
	BaseURL string
}

// OandaClient represents the OANDA v20 REST API client. Candles are fetched
// as midpoint candles.
type OandaClient struct {
	cfg   *OandaConfig
	httpc http.Client
	buf   *bytes.Buffer
}

// Ensure the OANDA client implements the CandleSource interface.
var _ shared.CandleSource = (*OandaClient)(nil)

// NewOandaClient initializes a new OANDA client.
func NewOandaClient(cfg *OandaConfig) (*OandaClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oanda api key cannot be an empty string")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("oanda base url cannot be an empty string")
	}

	return &OandaClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
		buf:   bytes.NewBuffer(make([]byte, 0, 512)),
	}, nil
}

// formURL creates full urls including parameters for the api.
func (c *OandaClient) formURL(path string, params string) string {
	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// ParseCandlesticks parses candlesticks from the provided json data.
func ParseCandlesticks(data []gjson.Result, instrument string, timeframe shared.Timeframe) ([]*shared.Candlestick, error) {
	candles := make([]*shared.Candlestick, 0, len(data))

	for idx := range data {
		candle := &shared.Candlestick{
			Open:       data[idx].Get("mid.o").Float(),
			High:       data[idx].Get("mid.h").Float(),
			Low:        data[idx].Get("mid.l").Float(),
			Close:      data[idx].Get("mid.c").Float(),
			Volume:     data[idx].Get("volume").Float(),
			Complete:   data[idx].Get("complete").Bool(),
			Instrument: instrument,
			Timeframe:  timeframe,
		}

		dt, err := time.Parse(candleTimeLayout, data[idx].Get("time").String())
		if err != nil {
			return nil, fmt.Errorf("parsing candlestick time: %w", err)
		}

		candle.Time = dt
		candles = append(candles, candle)
	}

	return candles, nil
}

// fetchCandles fetches instrument candles with the provided parameters.
func (c *OandaClient) fetchCandles(ctx context.Context, instrument string, timeframe shared.Timeframe, params url.Values) ([]*shared.Candlestick, error) {
	params.Add("granularity", timeframe.String())
	params.Add("price", "M")

	formedURL := c.formURL(fmt.Sprintf("/v3/instruments/%s/candles", instrument), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating candles request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching candles (%s) for %s: %w", timeframe.String(), instrument, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching candles for %s: status %d: %s",
			instrument, resp.StatusCode, gjson.GetBytes(body, "errorMessage").String())
	}

	data := gjson.GetBytes(body, "candles").Array()

	return ParseCandlesticks(data, instrument, timeframe)
}

// FetchLatest fetches the latest count candles for the provided instrument
// and timeframe, ordered by time ascending.
func (c *OandaClient) FetchLatest(ctx context.Context, instrument string, timeframe shared.Timeframe, count int) ([]*shared.Candlestick, error) {
	params := url.Values{}
	params.Add("count", strconv.Itoa(count))

	return c.fetchCandles(ctx, instrument, timeframe, params)
}

// FetchRange fetches all candles for the provided instrument and timeframe
// within the provided time range, ordered by time ascending.
func (c *OandaClient) FetchRange(ctx context.Context, instrument string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]*shared.Candlestick, error) {
	params := url.Values{}
	params.Add("from", start.UTC().Format(candleTimeLayout))
	if !end.IsZero() {
		params.Add("to", end.UTC().Format(candleTimeLayout))
	}

	return c.fetchCandles(ctx, instrument, timeframe, params)
}
