// Package scorer combines six factor scores into a bounded overall score
// and maps it to a discrete signal with a confidence value. Scoring is a
// pure function of the computed metrics and the volatility regime.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/internal/stats"
	"github.com/ColeMorton/trading-sub009/models"
)

// Scorer evaluates the fixed six-factor model under a calibration.
type Scorer struct {
	cal    Calibration
	logger zerolog.Logger
}

// New creates a scorer with the given calibration.
func New(cal Calibration) *Scorer {
	return &Scorer{
		cal:    cal,
		logger: log.With().Str("component", "scorer").Logger(),
	}
}

// Outcome is one scoring pass over a single instrument.
type Outcome struct {
	Signal     models.Signal
	Confidence float64
	Overall    float64
	Regime     Regime
	Factors    []models.FactorAttribution
	Reasoning  string
}

// Score runs the weighted model. Factor scores are clamped to
// [-100,100], regime-adjusted weights are renormalized to sum to 1, and
// the overall score is clipped to [-100,100] before discretization.
func (s *Scorer) Score(ms *models.MarketStats, vm models.VolumeMetrics, regime Regime) Outcome {
	scores := map[string]float64{
		FactorRisk:          s.riskScore(ms),
		FactorMomentum:      s.MomentumScore(ms.MomentumDiff),
		FactorTrend:         s.trendScore(ms),
		FactorRiskAdjusted:  s.riskAdjustedScore(ms),
		FactorMeanReversion: s.meanReversionScore(ms.PriceRank),
		FactorVolume:        s.volumeScore(vm),
	}
	weights := NormalizedWeights(regime)

	factors := make([]models.FactorAttribution, 0, len(FactorNames))
	var overall float64
	for _, name := range FactorNames {
		score := clamp(scores[name], -100, 100)
		w := weights[name]
		contribution := score * w
		overall += contribution
		factors = append(factors, models.FactorAttribution{
			Factor:       name,
			Score:        score,
			Weight:       w,
			Contribution: contribution,
		})
	}
	overall = clamp(overall, -100, 100)

	signal, confidence := s.discretize(overall, regime)
	out := Outcome{
		Signal:     signal,
		Confidence: confidence,
		Overall:    overall,
		Regime:     regime,
		Factors:    factors,
		Reasoning:  reasoning(factors, signal, regime),
	}
	s.logger.Debug().
		Float64("overall", overall).
		Str("signal", signal.String()).
		Str("regime", string(regime)).
		Msg("scored")
	return out
}

// riskScore builds a 0-100 risk composite from volatility, tail risk and
// distribution shape, beta-adjusts it, then converts to a signed
// contribution via -(risk-50): low risk supports buying, high risk
// opposes it.
func (s *Scorer) riskScore(ms *models.MarketStats) float64 {
	cal := s.cal

	volScore := clamp((ms.AnnualizedVol-cal.VolFloor)/(cal.VolCeil-cal.VolFloor)*80+10, 0, 100)
	tailScore := clamp(-ms.CVaR95*cal.TailScale, 0, 100)
	shapeScore := clamp(math.Abs(ms.Skewness)*cal.SkewScale+math.Max(0, ms.ExcessKurtosis)*cal.KurtScale, 0, 100)

	risk := cal.VolBlend*volScore + cal.TailBlend*tailScore + cal.ShapeBlend*shapeScore
	risk *= clamp(cal.BetaBase+cal.BetaSlope*ms.Beta, 0.5, 1.5)
	risk = clamp(risk, 0, 100)

	return clamp(-(risk - 50), -100, 100)
}

// MomentumScore maps the momentum differential through a continuous
// piecewise-linear response: steep near zero, flattening across the
// calibration knots. Continuity keeps the response strictly monotone in
// the raw differential. Exported for the monotonicity tests.
func (s *Scorer) MomentumScore(momentumDiff float64) float64 {
	knots := s.cal.MomentumKnots
	slopes := s.cal.MomentumSlopes

	a := math.Abs(momentumDiff)
	var v float64
	switch {
	case a <= knots[0]:
		v = a * slopes[0]
	case a <= knots[1]:
		v = knots[0]*slopes[0] + (a-knots[0])*slopes[1]
	case a <= knots[2]:
		v = knots[0]*slopes[0] + (knots[1]-knots[0])*slopes[1] + (a-knots[1])*slopes[2]
	default:
		v = knots[0]*slopes[0] + (knots[1]-knots[0])*slopes[1] + (knots[2]-knots[1])*slopes[2] + (a-knots[2])*slopes[3]
	}
	return clamp(math.Copysign(v, momentumDiff), -100, 100)
}

func trendValue(direction string) float64 {
	switch direction {
	case stats.TrendUp:
		return 1
	case stats.TrendDown:
		return -1
	}
	return 0
}

// trendScore weighs the three horizon reads, scales by trend
// consistency and tilts by the regression slope.
func (s *Scorer) trendScore(ms *models.MarketStats) float64 {
	cal := s.cal
	raw := trendValue(ms.TrendShort)*cal.TrendMultipliers[0] +
		trendValue(ms.TrendMedium)*cal.TrendMultipliers[1] +
		trendValue(ms.TrendLong)*cal.TrendMultipliers[2]
	raw *= 0.4 + 0.6*clamp(ms.TrendConsistency, 0, 1)
	raw += clamp(ms.RegressionSlope*cal.SlopeScale, -20, 20)
	return clamp(raw, -100, 100)
}

func (s *Scorer) riskAdjustedScore(ms *models.MarketStats) float64 {
	return clamp(ms.SharpeRatio*s.cal.SharpeScale+ms.SortinoRatio*s.cal.SortinoScale, -100, 100)
}

// meanReversionScore is asymmetric: it contributes nothing inside the
// normal percentile range and pushes against the prevailing extreme
// outside it.
func (s *Scorer) meanReversionScore(priceRank float64) float64 {
	cal := s.cal
	switch {
	case priceRank >= cal.ReversionHighRank:
		return clamp(-(priceRank-cal.ReversionHighRank)*cal.ReversionSlope, -100, 0)
	case priceRank <= cal.ReversionLowRank:
		return clamp((cal.ReversionLowRank-priceRank)*cal.ReversionSlope, 0, 100)
	default:
		return 0
	}
}

// volumeScore turns the externally supplied liquidity view into the
// sixth factor: direction from the up/down volume split, tilted by
// liquidity quality and relative-volume confirmation.
func (s *Scorer) volumeScore(vm models.VolumeMetrics) float64 {
	direction := clamp((vm.UpDownRatio-0.5)*200, -60, 60)
	liquidity := clamp((vm.LiquidityScore-50)*0.4, -20, 20)
	confirmation := clamp((vm.RelativeVolume-1)*10, -20, 20)
	return clamp(direction+liquidity+confirmation, -100, 100)
}

// discretize maps the overall score to a signal band and assigns a
// confidence proportional to the distance past the band's threshold,
// clamped to the band's fixed range.
func (s *Scorer) discretize(overall float64, regime Regime) (models.Signal, float64) {
	cal := s.cal
	offsets := thresholdOffsets(regime)

	strongBuy := cal.StrongBuyThreshold + offsets[0]
	buy := cal.BuyThreshold + offsets[1]
	sell := cal.SellThreshold + offsets[2]
	strongSell := cal.StrongSellThreshold + offsets[3]

	switch {
	case overall >= strongBuy:
		return models.StrongBuy, bandConfidence(0.80, 0.92, (overall-strongBuy)/20)
	case overall >= buy:
		return models.Buy, bandConfidence(0.65, 0.80, (overall-buy)/(strongBuy-buy))
	case overall >= sell:
		// Hold confidence peaks at the center of the band.
		center := (buy + sell) / 2
		half := (buy - sell) / 2
		return models.Hold, bandConfidence(0.45, 0.60, 1-math.Abs(overall-center)/half)
	case overall >= strongSell:
		return models.Sell, bandConfidence(0.65, 0.80, (sell-overall)/(sell-strongSell))
	default:
		return models.StrongSell, bandConfidence(0.80, 0.92, (strongSell-overall)/20)
	}
}

func bandConfidence(lo, hi, frac float64) float64 {
	return lo + (hi-lo)*clamp(frac, 0, 1)
}

// reasoning names the top contributing factors and the regime.
func reasoning(factors []models.FactorAttribution, signal models.Signal, regime Regime) string {
	ranked := append([]models.FactorAttribution(nil), factors...)
	sort.Slice(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Contribution) > math.Abs(ranked[j].Contribution)
	})
	top := make([]string, 0, 2)
	for _, f := range ranked {
		if f.Contribution == 0 || len(top) == 2 {
			break
		}
		top = append(top, f.Factor)
	}
	if len(top) == 0 {
		return fmt.Sprintf("no factor conviction, %s in %s regime", signal, regime)
	}
	return fmt.Sprintf("%s driven by %s in %s regime", signal, strings.Join(top, " and "), regime)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
