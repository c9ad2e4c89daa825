// Package provider implements the upstream data collaborators: price
// history, risk-free reference rate, volatility index and volume
// metrics. Each is consumed through a narrow interface so analyses can
// be tested against stubs.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platformhttp "github.com/ColeMorton/trading-sub009/internal/platform/http"
	"github.com/ColeMorton/trading-sub009/models"
)

// ErrDataUnavailable reports that an upstream provider returned nothing
// usable for the request.
var ErrDataUnavailable = errors.New("market data unavailable")

// chartResponse is the Yahoo-style chart API payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// PriceClient fetches daily OHLCV history over HTTP.
type PriceClient struct {
	client  *platformhttp.Client
	baseURL string
	logger  zerolog.Logger
}

// PriceClientOptions configures a PriceClient.
type PriceClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewPriceClient creates a price-history client.
func NewPriceClient(opts PriceClientOptions) *PriceClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	return &PriceClient{
		client: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
			UserAgent:      "trading-sub009/1.0",
		}),
		baseURL: opts.BaseURL,
		logger:  log.With().Str("component", "price_client").Logger(),
	}
}

// GetHistory fetches lookbackDays of daily candles for ticker, oldest
// first. Returns ErrDataUnavailable when the provider has nothing.
func (c *PriceClient) GetHistory(ctx context.Context, ticker string, lookbackDays int) ([]models.Candle, error) {
	span := models.CalendarDaysForBars(lookbackDays)
	u := fmt.Sprintf("%s/%s?interval=1d&range=%dd", c.baseURL, url.PathEscape(ticker), span)

	c.logger.Debug().Str("ticker", ticker).Int("lookback_days", lookbackDays).Msg("fetching history")

	body, err := c.client.GetJSON(ctx, u)
	if err != nil {
		c.logger.Error().Err(err).Str("ticker", ticker).Msg("history request failed")
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, ticker)
	}

	var data chartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("ticker", ticker).Msg("bad chart payload")
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, ticker)
	}
	if data.Chart.Error != nil {
		c.logger.Warn().Str("ticker", ticker).Str("code", data.Chart.Error.Code).Msg("chart API error")
		return nil, fmt.Errorf("%w: %s (%s)", ErrDataUnavailable, ticker, data.Chart.Error.Code)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, ticker)
	}

	result := data.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candle := models.Candle{
			Datetime: time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close:    *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, ticker)
	}

	// Oldest first for proper calculations.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Datetime < candles[j].Datetime
	})

	c.logger.Debug().Str("ticker", ticker).Int("count", len(candles)).Msg("fetched history")
	return candles, nil
}
