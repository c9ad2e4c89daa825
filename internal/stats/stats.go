// Package stats derives the return-distribution, risk, momentum and
// trend metrics one analysis pass feeds to the scorer. Every
// sub-computation degrades independently: a metric that cannot be
// computed gets its neutral default, a warn log line and an entry in
// Degraded, and the pass continues.
package stats

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/models"
)

// minObservations is the sample size below which risk and derived
// metrics fall back to neutral defaults instead of failing.
const minObservations = 30

var errInsufficientData = errors.New("insufficient observations")

// Engine computes MarketStats from chronological candle history.
type Engine struct {
	rates  models.RateClient
	logger zerolog.Logger
}

// NewEngine creates an engine using rates for Sharpe/Sortino reference.
func NewEngine(rates models.RateClient) *Engine {
	return &Engine{
		rates:  rates,
		logger: log.With().Str("component", "stats_engine").Logger(),
	}
}

// Compute derives the full metric set for candles. benchmark is the
// reference-index history for beta/alpha; regime selects the fallback
// tier of the risk-free rate. An empty result (SampleSize 0) is returned
// only when no return series can be built at all.
func (e *Engine) Compute(ctx context.Context, ticker string, candles []models.Candle, benchmark []models.Candle, regime string) *models.MarketStats {
	closes := Closes(candles)
	returns := LogReturns(closes)

	ms := &models.MarketStats{}
	if len(returns) == 0 {
		e.logger.Warn().Str("ticker", ticker).Msg("no return series, returning empty stats")
		return ms
	}

	ms.SampleSize = len(returns)
	ms.LastClose = closes[len(closes)-1]

	degrade := func(metric string, err error) {
		ms.Degraded = append(ms.Degraded, metric)
		e.logger.Warn().Str("ticker", ticker).Str("metric", metric).Err(err).
			Msg("metric degraded, default substituted")
	}

	ms.MeanReturn = Mean(returns)
	ms.StdDev = StdDev(returns)
	ms.Variance = ms.StdDev * ms.StdDev
	ms.AnnualizedVol = ms.StdDev * math.Sqrt(models.TradingDaysPerYear)

	small := len(returns) < minObservations

	// Shape of the return distribution. Neutral shape below the
	// observation floor.
	if small {
		degrade("distribution_shape", errInsufficientData)
		ms.NormalityPValue = 0.5
		ms.BestFit = "normal"
	} else {
		ms.Skewness = Skewness(returns)
		ms.ExcessKurtosis = ExcessKurtosis(returns)
		ms.NormalityStat, ms.NormalityPValue = JarqueBera(returns)
		ms.BestFit = BestFitDistribution(returns)
	}

	ms.Percentiles = PercentileSet(returns)

	if small {
		degrade("tail_risk", errInsufficientData)
	} else {
		ms.VaR95 = Percentile(returns, 5)
		ms.VaR99 = Percentile(returns, 1)
		ms.CVaR95 = cvar(returns, ms.VaR95)
		ms.CVaR99 = cvar(returns, ms.VaR99)
	}

	if dd, err := MaxDrawdown(returns); err != nil {
		degrade("max_drawdown", err)
	} else {
		ms.MaxDrawdown = dd
	}

	// Beta defaults to 1 (moves with the index) when the benchmark is
	// missing or too short to regress against.
	ms.Beta = 1
	if beta, alpha, sys, idio, err := marketModel(returns, LogReturns(Closes(benchmark))); err != nil {
		degrade("market_model", err)
		ms.IdiosyncraticRisk = ms.Variance
	} else {
		ms.Beta, ms.Alpha = beta, alpha
		ms.SystematicRisk, ms.IdiosyncraticRisk = sys, idio
	}

	ms.MomentumDiff = MomentumDifferential(returns)
	ms.RollingMomentum = RollingMomentum(closes, momentumWindows)
	ms.PriceAcceleration = PriceAcceleration(returns)

	ms.TrendShort = TrendDirection(closes, trendHorizons[0])
	ms.TrendMedium = TrendDirection(closes, trendHorizons[1])
	ms.TrendLong = TrendDirection(closes, trendHorizons[2])
	ms.TrendConsistency = TrendConsistency(closes, trendHorizons[0])
	if slope, err := RegressionSlope(closes); err != nil {
		degrade("regression_slope", err)
	} else {
		ms.RegressionSlope = slope
	}

	ms.PriceRank = PriceRank(closes)

	ms.RiskFree = e.rates.CurrentRate(ctx, regime)
	if small {
		degrade("risk_adjusted_ratios", errInsufficientData)
	} else {
		ms.SharpeRatio = SharpeRatio(returns, ms.RiskFree.Rate)
		ms.SortinoRatio = SortinoRatio(returns, ms.RiskFree.Rate)
		ms.ReturnToRisk = ReturnToRisk(returns)
	}

	return ms
}

// Closes extracts the close series from candles.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, 0, len(candles))
	for _, c := range candles {
		out = append(out, c.Close)
	}
	return out
}

// LogReturns computes log returns of a positive price series. Zero or
// negative prices are skipped rather than producing NaN.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out
}

// Mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev is the sample standard deviation.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Skewness is the adjusted Fisher-Pearson sample skewness.
func Skewness(xs []float64) float64 {
	n := float64(len(xs))
	if n < 3 {
		return 0
	}
	m, s := Mean(xs), StdDev(xs)
	if s == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		d := (x - m) / s
		sum += d * d * d
	}
	return n / ((n - 1) * (n - 2)) * sum
}

// ExcessKurtosis is the sample excess kurtosis (0 for a normal).
func ExcessKurtosis(xs []float64) float64 {
	n := float64(len(xs))
	if n < 4 {
		return 0
	}
	m, s := Mean(xs), StdDev(xs)
	if s == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		d := (x - m) / s
		sum += d * d * d * d
	}
	adj := n * (n + 1) / ((n - 1) * (n - 2) * (n - 3))
	return adj*sum - 3*(n-1)*(n-1)/((n-2)*(n-3))
}

// Percentile returns the p-th percentile (0-100) of xs using linear
// interpolation between order statistics.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// percentileLevels is the fixed grid reported in MarketStats.
var percentileLevels = []int{1, 5, 10, 25, 50, 75, 90, 95, 99}

// PercentileSet evaluates the fixed percentile grid.
func PercentileSet(xs []float64) map[int]float64 {
	out := make(map[int]float64, len(percentileLevels))
	for _, p := range percentileLevels {
		out[p] = Percentile(xs, float64(p))
	}
	return out
}

// cvar averages the returns at or below the VaR threshold.
func cvar(returns []float64, varLevel float64) float64 {
	var sum float64
	var n int
	for _, r := range returns {
		if r <= varLevel {
			sum += r
			n++
		}
	}
	if n == 0 {
		return varLevel
	}
	return sum / float64(n)
}

// MaxDrawdown reconstructs the cumulative-return curve and reports the
// deepest peak-to-trough loss as a positive fraction.
func MaxDrawdown(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, errInsufficientData
	}
	equity, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		equity *= math.Exp(r)
		if equity > peak {
			peak = equity
		}
		if dd := 1 - equity/peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD, nil
}

// marketModel regresses asset returns on the benchmark, aligning both
// series by their most recent observations.
func marketModel(asset, bench []float64) (beta, alpha, systematic, idio float64, err error) {
	n := len(asset)
	if len(bench) < n {
		n = len(bench)
	}
	if n < minObservations {
		return 0, 0, 0, 0, errInsufficientData
	}
	a := asset[len(asset)-n:]
	b := bench[len(bench)-n:]

	meanA, meanB := Mean(a), Mean(b)
	var cov, varB, varA float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varB += db * db
		varA += da * da
	}
	cov /= float64(n - 1)
	varB /= float64(n - 1)
	varA /= float64(n - 1)
	if varB == 0 {
		return 0, 0, 0, 0, errors.New("benchmark variance is zero")
	}
	beta = cov / varB
	alpha = meanA - beta*meanB
	systematic = beta * beta * varB
	idio = varA - systematic
	if idio < 0 {
		idio = 0
	}
	return beta, alpha, systematic, idio, nil
}

// SharpeRatio annualizes the excess return over the risk-free rate.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	vol := StdDev(returns) * math.Sqrt(models.TradingDaysPerYear)
	if vol == 0 {
		return 0
	}
	annual := Mean(returns) * models.TradingDaysPerYear
	return (annual - riskFree) / vol
}

// SortinoRatio penalizes only downside deviation.
func SortinoRatio(returns []float64, riskFree float64) float64 {
	var ss float64
	var n int
	for _, r := range returns {
		if r < 0 {
			ss += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	downside := math.Sqrt(ss/float64(n)) * math.Sqrt(models.TradingDaysPerYear)
	if downside == 0 {
		return 0
	}
	annual := Mean(returns) * models.TradingDaysPerYear
	return (annual - riskFree) / downside
}

// ReturnToRisk is the raw annual return over annual volatility.
func ReturnToRisk(returns []float64) float64 {
	vol := StdDev(returns) * math.Sqrt(models.TradingDaysPerYear)
	if vol == 0 {
		return 0
	}
	return Mean(returns) * models.TradingDaysPerYear / vol
}

// PriceRank is the percentile rank (0-100) of the latest close within
// the whole observed series.
func PriceRank(closes []float64) float64 {
	if len(closes) == 0 {
		return 50
	}
	last := closes[len(closes)-1]
	var below int
	for _, c := range closes {
		if c <= last {
			below++
		}
	}
	return float64(below) / float64(len(closes)) * 100
}
