package provider

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/models"
)

// volumeLookback is the window for the baseline volume statistics.
const volumeLookback = 20

// recentWindow is the short window compared against the baseline for
// relative volume.
const recentWindow = 5

// VolumeProvider derives liquidity metrics from candle history. It
// supplies the raw inputs of the sixth scoring factor.
type VolumeProvider struct {
	logger zerolog.Logger
}

// NewVolumeProvider creates a provider.
func NewVolumeProvider() *VolumeProvider {
	return &VolumeProvider{
		logger: log.With().Str("component", "volume_provider").Logger(),
	}
}

// Metrics computes the liquidity view for ticker. Candle feeds without
// volume data come back neutral.
func (p *VolumeProvider) Metrics(_ context.Context, ticker string, candles []models.Candle) models.VolumeMetrics {
	neutral := models.VolumeMetrics{RelativeVolume: 1, LiquidityScore: 50, UpDownRatio: 0.5}
	if len(candles) < recentWindow {
		return neutral
	}

	window := candles
	if len(window) > volumeLookback {
		window = window[len(window)-volumeLookback:]
	}

	var dollarSum float64
	var volSum, upVolume, downVolume int64
	hasVolume := false
	for _, c := range window {
		if c.Volume > 0 {
			hasVolume = true
		}
		dollarSum += c.Close * float64(c.Volume)
		volSum += c.Volume
		if c.Close > c.Open {
			upVolume += c.Volume
		} else {
			downVolume += c.Volume
		}
	}
	if !hasVolume {
		p.logger.Debug().Str("ticker", ticker).Msg("no volume data, neutral liquidity view")
		return neutral
	}

	vm := models.VolumeMetrics{
		AvgDollarVolume: dollarSum / float64(len(window)),
		RelativeVolume:  1,
		UpDownRatio:     0.5,
	}
	if upVolume+downVolume > 0 {
		vm.UpDownRatio = float64(upVolume) / float64(upVolume+downVolume)
	}

	baseline := float64(volSum) / float64(len(window))
	recent := window
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	var recentSum int64
	for _, c := range recent {
		recentSum += c.Volume
	}
	if baseline > 0 {
		vm.RelativeVolume = float64(recentSum) / float64(len(recent)) / baseline
	}

	vm.LiquidityScore = liquidityScore(vm.AvgDollarVolume)
	return vm
}

// liquidityScore tiers average dollar volume into a 0-100 score.
func liquidityScore(avgDollarVolume float64) float64 {
	switch {
	case avgDollarVolume >= 1e9:
		return 95
	case avgDollarVolume >= 1e8:
		return 80
	case avgDollarVolume >= 1e7:
		return 60
	case avgDollarVolume >= 1e6:
		return 40
	case avgDollarVolume > 0:
		return 20
	default:
		return 50
	}
}
