package scorer

// Regime is the discretized market-volatility state used to adapt factor
// weights and signal thresholds.
type Regime string

const (
	RegimeVeryLow Regime = "very_low"
	RegimeLow     Regime = "low"
	RegimeNormal  Regime = "normal"
	RegimeHigh    Regime = "high"
	RegimeCrisis  Regime = "crisis"
)

// regimeThresholds are the volatility-index levels bounding each regime,
// in ascending order.
var regimeThresholds = [5]float64{12, 16, 25, 35, 50}

var regimeOrder = [5]Regime{RegimeVeryLow, RegimeLow, RegimeNormal, RegimeHigh, RegimeCrisis}

// DetectRegime maps a volatility-index level to its regime. Levels at or
// beyond the last threshold stay in crisis.
func DetectRegime(vix float64) Regime {
	for i, th := range regimeThresholds {
		if vix < th {
			return regimeOrder[i]
		}
	}
	return RegimeCrisis
}

// regimeParams carries the per-regime scoring adjustments: additive
// offsets to the four signal thresholds (strong-buy, buy, sell,
// strong-sell) and a weight multiplier per factor.
type regimeParams struct {
	Offsets     [4]float64
	Multipliers map[string]float64
}

// Calm regimes loosen the entry thresholds and lean into momentum and
// trend; stressed regimes raise the bar to act and shift weight toward
// risk and mean reversion. Calibration values, not physical constants.
var regimeTable = map[Regime]regimeParams{
	RegimeVeryLow: {
		Offsets: [4]float64{-2, -1, 1, 2},
		Multipliers: map[string]float64{
			FactorRisk: 0.80, FactorMomentum: 1.20, FactorTrend: 1.15,
			FactorRiskAdjusted: 0.90, FactorMeanReversion: 0.60, FactorVolume: 0.90,
		},
	},
	RegimeLow: {
		Offsets: [4]float64{-1, -0.5, 0.5, 1},
		Multipliers: map[string]float64{
			FactorRisk: 0.90, FactorMomentum: 1.10, FactorTrend: 1.10,
			FactorRiskAdjusted: 0.95, FactorMeanReversion: 0.80, FactorVolume: 0.95,
		},
	},
	RegimeNormal: {
		Offsets: [4]float64{0, 0, 0, 0},
		Multipliers: map[string]float64{
			FactorRisk: 1, FactorMomentum: 1, FactorTrend: 1,
			FactorRiskAdjusted: 1, FactorMeanReversion: 1, FactorVolume: 1,
		},
	},
	RegimeHigh: {
		Offsets: [4]float64{4, 2, -2, -4},
		Multipliers: map[string]float64{
			FactorRisk: 1.30, FactorMomentum: 0.80, FactorTrend: 0.90,
			FactorRiskAdjusted: 1.15, FactorMeanReversion: 1.40, FactorVolume: 1.15,
		},
	},
	RegimeCrisis: {
		Offsets: [4]float64{8, 4, -4, -8},
		Multipliers: map[string]float64{
			FactorRisk: 1.60, FactorMomentum: 0.60, FactorTrend: 0.70,
			FactorRiskAdjusted: 1.30, FactorMeanReversion: 1.80, FactorVolume: 1.30,
		},
	},
}

// NormalizedWeights applies the regime multipliers to the base weights
// and renormalizes so the six weights sum to exactly 1.
func NormalizedWeights(regime Regime) map[string]float64 {
	params, ok := regimeTable[regime]
	if !ok {
		params = regimeTable[RegimeNormal]
	}
	weights := make(map[string]float64, len(baseWeights))
	var total float64
	for factor, base := range baseWeights {
		w := base * params.Multipliers[factor]
		weights[factor] = w
		total += w
	}
	for factor := range weights {
		weights[factor] /= total
	}
	return weights
}

// thresholdOffsets returns the four additive threshold deltas for regime.
func thresholdOffsets(regime Regime) [4]float64 {
	params, ok := regimeTable[regime]
	if !ok {
		return regimeTable[RegimeNormal].Offsets
	}
	return params.Offsets
}
