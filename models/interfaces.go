package models

import "context"

// CandleClient fetches chronological OHLCV history for a ticker.
type CandleClient interface {
	GetHistory(ctx context.Context, ticker string, lookbackDays int) ([]Candle, error)
}

// RateClient supplies the risk-free reference rate for a volatility regime.
type RateClient interface {
	CurrentRate(ctx context.Context, regime string) RiskFreeRate
}

// VolatilityClient supplies the volatility-index level used for regime
// detection.
type VolatilityClient interface {
	CurrentLevel(ctx context.Context) (float64, error)
}

// VolumeClient derives liquidity metrics for a ticker from its history.
type VolumeClient interface {
	Metrics(ctx context.Context, ticker string, candles []Candle) VolumeMetrics
}

// PortfolioClient resolves a portfolio file reference to its tickers.
type PortfolioClient interface {
	Tickers(ctx context.Context, file string) ([]string, error)
}
