package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColeMorton/trading-sub009/internal/stats"
	"github.com/ColeMorton/trading-sub009/models"
)

func TestDetectRegime(t *testing.T) {
	tests := []struct {
		vix      float64
		expected Regime
	}{
		{8, RegimeVeryLow},
		{11.9, RegimeVeryLow},
		{12, RegimeLow},
		{15.9, RegimeLow},
		{16, RegimeNormal},
		{24.9, RegimeNormal},
		{25, RegimeHigh},
		{34.9, RegimeHigh},
		{35, RegimeCrisis},
		{49, RegimeCrisis},
		{80, RegimeCrisis},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectRegime(tt.vix), "vix=%v", tt.vix)
	}
}

func TestNormalizedWeightsSumToOne(t *testing.T) {
	for _, regime := range regimeOrder {
		weights := NormalizedWeights(regime)
		require.Len(t, weights, 6, string(regime))
		var sum float64
		for _, w := range weights {
			assert.Greater(t, w, 0.0)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, string(regime))
	}
}

func bullishStats() *models.MarketStats {
	return &models.MarketStats{
		SampleSize:       120,
		AnnualizedVol:    0.18,
		CVaR95:           -0.015,
		Skewness:         0.1,
		ExcessKurtosis:   0.5,
		Beta:             1.0,
		MomentumDiff:     0.006,
		TrendShort:       stats.TrendUp,
		TrendMedium:      stats.TrendUp,
		TrendLong:        stats.TrendUp,
		TrendConsistency: 0.8,
		RegressionSlope:  0.002,
		SharpeRatio:      1.2,
		SortinoRatio:     1.5,
		PriceRank:        70,
	}
}

func neutralVolume() models.VolumeMetrics {
	return models.VolumeMetrics{
		AvgDollarVolume: 5e8,
		RelativeVolume:  1.0,
		LiquidityScore:  60,
		UpDownRatio:     0.55,
	}
}

func TestScoreBullishSetup(t *testing.T) {
	s := New(DefaultCalibration())
	out := s.Score(bullishStats(), neutralVolume(), RegimeNormal)

	assert.GreaterOrEqual(t, out.Overall, 8.0, "bullish setup should clear the buy threshold")
	assert.Contains(t, []models.Signal{models.Buy, models.StrongBuy}, out.Signal)
	assert.GreaterOrEqual(t, out.Confidence, 0.45)
	assert.LessOrEqual(t, out.Confidence, 0.92)
	assert.Len(t, out.Factors, 6)
	assert.NotEmpty(t, out.Reasoning)
	assert.Contains(t, out.Reasoning, "normal regime")
}

func TestMomentumScoreStrictlyMonotone(t *testing.T) {
	s := New(DefaultCalibration())
	inputs := []float64{-0.03, -0.012, -0.004, -0.001, 0, 0.001, 0.0039, 0.004, 0.0041, 0.009, 0.012, 0.03}
	prev := math.Inf(-1)
	for _, in := range inputs {
		score := s.MomentumScore(in)
		assert.Greater(t, score, prev, "momentum score must strictly increase at %v", in)
		assert.LessOrEqual(t, math.Abs(score), 100.0)
		prev = score
	}
}

func TestMomentumIncreaseCannotDecreaseOverall(t *testing.T) {
	s := New(DefaultCalibration())
	low := bullishStats()
	low.MomentumDiff = 0.002
	high := bullishStats()
	high.MomentumDiff = 0.008

	outLow := s.Score(low, neutralVolume(), RegimeNormal)
	outHigh := s.Score(high, neutralVolume(), RegimeNormal)
	assert.GreaterOrEqual(t, outHigh.Overall, outLow.Overall)
}

func TestMeanReversionAsymmetry(t *testing.T) {
	s := New(DefaultCalibration())
	assert.Zero(t, s.meanReversionScore(50))
	assert.Zero(t, s.meanReversionScore(94.9))
	assert.Zero(t, s.meanReversionScore(5.1))
	assert.Less(t, s.meanReversionScore(98), 0.0)
	assert.Greater(t, s.meanReversionScore(2), 0.0)
	assert.GreaterOrEqual(t, s.meanReversionScore(0), 0.0)
}

func TestFactorScoresBounded(t *testing.T) {
	s := New(DefaultCalibration())
	extreme := &models.MarketStats{
		AnnualizedVol:  5,
		CVaR95:         -0.5,
		Skewness:       -8,
		ExcessKurtosis: 50,
		Beta:           4,
		MomentumDiff:   0.9,
		TrendShort:     stats.TrendDown,
		TrendMedium:    stats.TrendDown,
		TrendLong:      stats.TrendDown,
		SharpeRatio:    -30,
		SortinoRatio:   -30,
		PriceRank:      100,
	}
	out := s.Score(extreme, models.VolumeMetrics{UpDownRatio: 0, LiquidityScore: 0, RelativeVolume: 0}, RegimeCrisis)
	for _, f := range out.Factors {
		assert.GreaterOrEqual(t, f.Score, -100.0, f.Factor)
		assert.LessOrEqual(t, f.Score, 100.0, f.Factor)
	}
	assert.GreaterOrEqual(t, out.Overall, -100.0)
	assert.LessOrEqual(t, out.Overall, 100.0)
	assert.Equal(t, models.StrongSell, out.Signal)
	assert.GreaterOrEqual(t, out.Confidence, 0.80)
	assert.LessOrEqual(t, out.Confidence, 0.92)
}

func TestDiscretizeBands(t *testing.T) {
	s := New(DefaultCalibration())
	tests := []struct {
		overall  float64
		regime   Regime
		expected models.Signal
	}{
		{30, RegimeNormal, models.StrongBuy},
		{20, RegimeNormal, models.StrongBuy},
		{10, RegimeNormal, models.Buy},
		{0, RegimeNormal, models.Hold},
		{-10, RegimeNormal, models.Sell},
		{-30, RegimeNormal, models.StrongSell},
		// Crisis raises the bar: +8 on strong buy, +4 on buy.
		{22, RegimeCrisis, models.Buy},
		{10, RegimeCrisis, models.Hold},
		// Very low vol loosens it: 19 clears 20-2=18.
		{19, RegimeVeryLow, models.StrongBuy},
	}
	for _, tt := range tests {
		signal, conf := s.discretize(tt.overall, tt.regime)
		assert.Equal(t, tt.expected, signal, "overall=%v regime=%s", tt.overall, tt.regime)
		assert.GreaterOrEqual(t, conf, 0.45)
		assert.LessOrEqual(t, conf, 0.92)
	}
}

func TestConfidenceGrowsPastThreshold(t *testing.T) {
	s := New(DefaultCalibration())
	_, atThreshold := s.discretize(20, RegimeNormal)
	_, deepIn := s.discretize(38, RegimeNormal)
	assert.InDelta(t, 0.80, atThreshold, 1e-9)
	assert.Greater(t, deepIn, atThreshold)
	assert.LessOrEqual(t, deepIn, 0.92)
}

func TestLoadCalibrationDefaultsOnEmptyPath(t *testing.T) {
	cal, err := LoadCalibration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCalibration(), cal)
}
