package provider

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/models"
)

// neutralVIX is the level assumed when the index cannot be fetched,
// landing regime detection in "normal".
const neutralVIX = 20.0

// vixTicker is the volatility index symbol on the chart API.
const vixTicker = "^VIX"

// VolatilityProvider reads the volatility-index level off the shared
// price feed.
type VolatilityProvider struct {
	prices models.CandleClient
	logger zerolog.Logger
}

// NewVolatilityProvider creates a provider backed by prices.
func NewVolatilityProvider(prices models.CandleClient) *VolatilityProvider {
	return &VolatilityProvider{
		prices: prices,
		logger: log.With().Str("component", "volatility_provider").Logger(),
	}
}

// CurrentLevel returns the latest volatility-index close, or the neutral
// level with an error when the feed has nothing.
func (p *VolatilityProvider) CurrentLevel(ctx context.Context) (float64, error) {
	candles, err := p.prices.GetHistory(ctx, vixTicker, 5)
	if err != nil || len(candles) == 0 {
		p.logger.Warn().Err(err).Msg("volatility index unavailable, assuming neutral")
		return neutralVIX, err
	}
	return candles[len(candles)-1].Close, nil
}
