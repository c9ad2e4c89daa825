package provider

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/models"
)

// rateTTL is how long a fetched risk-free rate stays fresh.
const rateTTL = 6 * time.Hour

// Tiered fallback rates by volatility regime, used when no live rate can
// be fetched.
var fallbackRates = map[string]float64{
	"high":   0.025,
	"crisis": 0.010,
}

// defaultFallbackRate covers every regime without its own tier.
const defaultFallbackRate = 0.02

// RateFetcher obtains a live annualized risk-free rate.
type RateFetcher func(ctx context.Context) (float64, error)

// RateProvider caches the reference rate with a TTL and degrades to the
// regime-tiered fallback when the fetch fails.
type RateProvider struct {
	fetch RateFetcher

	mu       sync.Mutex
	cached   models.RiskFreeRate
	hasCache bool

	now    func() time.Time
	logger zerolog.Logger
}

// NewRateProvider creates a provider around fetch. A nil fetch always
// serves fallback rates.
func NewRateProvider(fetch RateFetcher) *RateProvider {
	return &RateProvider{
		fetch:  fetch,
		now:    time.Now,
		logger: log.With().Str("component", "rate_provider").Logger(),
	}
}

// CurrentRate returns the cached rate while fresh, refetches when stale,
// and falls back to the regime tier when the source is unavailable.
func (p *RateProvider) CurrentRate(ctx context.Context, regime string) models.RiskFreeRate {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasCache && p.now().Sub(p.cached.Timestamp) < rateTTL {
		return p.cached
	}

	if p.fetch != nil {
		if rate, err := p.fetch(ctx); err == nil {
			p.cached = models.RiskFreeRate{
				Rate:      rate,
				Source:    "live",
				Timestamp: p.now(),
			}
			p.hasCache = true
			return p.cached
		} else {
			p.logger.Warn().Err(err).Str("regime", regime).Msg("rate fetch failed, using fallback")
		}
	}

	rate, ok := fallbackRates[regime]
	if !ok {
		rate = defaultFallbackRate
	}
	// Fallbacks are not cached, so a recovered source is picked up on
	// the next call.
	return models.RiskFreeRate{
		Rate:       rate,
		Source:     "fallback",
		Timestamp:  p.now(),
		IsFallback: true,
	}
}
