package scorer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Factor names, fixed at six.
const (
	FactorRisk          = "risk"
	FactorMomentum      = "momentum"
	FactorTrend         = "trend"
	FactorRiskAdjusted  = "risk_adjusted"
	FactorMeanReversion = "mean_reversion"
	FactorVolume        = "volume"
)

// FactorNames lists the six factors in reporting order.
var FactorNames = []string{
	FactorRisk, FactorMomentum, FactorTrend,
	FactorRiskAdjusted, FactorMeanReversion, FactorVolume,
}

// baseWeights are the pre-regime factor weights. They sum to 1 before
// regime multipliers are applied; NormalizedWeights restores the sum
// afterwards.
var baseWeights = map[string]float64{
	FactorRisk:          0.25,
	FactorMomentum:      0.20,
	FactorTrend:         0.25,
	FactorRiskAdjusted:  0.18,
	FactorMeanReversion: 0.05,
	FactorVolume:        0.07,
}

// Calibration holds the empirically tuned scoring coefficients. These
// are calibration parameters subject to future tuning, not derived
// constants; a YAML file can override any of them.
type Calibration struct {
	// Momentum response: piecewise-linear slopes over the momentum
	// differential, switching at the knots. Keeping the response
	// continuous keeps the factor strictly monotone in its raw input.
	MomentumSlopes [4]float64 `yaml:"momentum_slopes"`
	MomentumKnots  [3]float64 `yaml:"momentum_knots"`

	// Trend multipliers for the short, medium and long horizon reads.
	TrendMultipliers [3]float64 `yaml:"trend_multipliers"`
	SlopeScale       float64    `yaml:"slope_scale"`

	// Risk composite blend and scaling.
	VolFloor     float64 `yaml:"vol_floor"`
	VolCeil      float64 `yaml:"vol_ceil"`
	TailScale    float64 `yaml:"tail_scale"`
	SkewScale    float64 `yaml:"skew_scale"`
	KurtScale    float64 `yaml:"kurt_scale"`
	VolBlend     float64 `yaml:"vol_blend"`
	TailBlend    float64 `yaml:"tail_blend"`
	ShapeBlend   float64 `yaml:"shape_blend"`
	BetaBase     float64 `yaml:"beta_base"`
	BetaSlope    float64 `yaml:"beta_slope"`

	// Risk-adjusted-return scaling.
	SharpeScale  float64 `yaml:"sharpe_scale"`
	SortinoScale float64 `yaml:"sortino_scale"`

	// Mean reversion triggers only beyond these percentile ranks.
	ReversionHighRank float64 `yaml:"reversion_high_rank"`
	ReversionLowRank  float64 `yaml:"reversion_low_rank"`
	ReversionSlope    float64 `yaml:"reversion_slope"`

	// Base signal thresholds, before regime offsets.
	StrongBuyThreshold  float64 `yaml:"strong_buy_threshold"`
	BuyThreshold        float64 `yaml:"buy_threshold"`
	SellThreshold       float64 `yaml:"sell_threshold"`
	StrongSellThreshold float64 `yaml:"strong_sell_threshold"`
}

// DefaultCalibration returns the tuned defaults.
func DefaultCalibration() Calibration {
	return Calibration{
		MomentumSlopes: [4]float64{5000, 2500, 1250, 500},
		MomentumKnots:  [3]float64{0.004, 0.010, 0.020},

		TrendMultipliers: [3]float64{120, 90, 60},
		SlopeScale:       2000,

		VolFloor:   0.10,
		VolCeil:    0.60,
		TailScale:  2000,
		SkewScale:  20,
		KurtScale:  10,
		VolBlend:   0.45,
		TailBlend:  0.35,
		ShapeBlend: 0.20,
		BetaBase:   0.70,
		BetaSlope:  0.30,

		SharpeScale:  35,
		SortinoScale: 15,

		ReversionHighRank: 95,
		ReversionLowRank:  5,
		ReversionSlope:    20,

		StrongBuyThreshold:  20,
		BuyThreshold:        8,
		SellThreshold:       -8,
		StrongSellThreshold: -20,
	}
}

// LoadCalibration overlays the defaults with values from a YAML file.
// An empty path returns the defaults unchanged.
func LoadCalibration(path string) (Calibration, error) {
	cal := DefaultCalibration()
	if path == "" {
		return cal, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cal, fmt.Errorf("reading calibration file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return cal, fmt.Errorf("parsing calibration file: %w", err)
	}
	return cal, nil
}
