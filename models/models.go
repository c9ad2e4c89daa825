package models

import (
	"time"
)

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// Signal is the discrete trade recommendation, ordered from most bearish
// to most bullish so that cost-based downgrades can step toward Hold.
type Signal int

const (
	StrongSell Signal = iota - 2
	Sell
	Hold
	Buy
	StrongBuy
)

func (s Signal) String() string {
	switch s {
	case StrongSell:
		return "STRONG_SELL"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	case Buy:
		return "BUY"
	case StrongBuy:
		return "STRONG_BUY"
	}
	return "HOLD"
}

// MarshalJSON emits the wire form ("STRONG_BUY" etc.).
func (s Signal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// AnalysisResult is what every analyzer produces per canonical key.
type AnalysisResult struct {
	Signal      Signal              `json:"signal"`
	Confidence  float64             `json:"confidence"`
	PValue      float64             `json:"p_value"`
	Reasoning   string              `json:"reasoning"`
	SampleSize  int                 `json:"sample_size"`
	DataSource  string              `json:"data_source"`
	Metrics     map[string]float64  `json:"metrics,omitempty"`
	Attribution *AttributionSummary `json:"attribution,omitempty"`
	Factors     []FactorAttribution `json:"factors,omitempty"`
}

// FactorAttribution captures one factor's part in a scoring pass.
type FactorAttribution struct {
	Factor       string  `json:"factor"`
	Score        float64 `json:"score"`        // bounded [-100,100]
	Weight       float64 `json:"weight"`       // normalized, [0,1]
	Contribution float64 `json:"contribution"` // score * weight
}

// AttributionSummary aggregates one scoring pass across all six factors.
type AttributionSummary struct {
	TotalContribution    float64 `json:"total_contribution"`
	PositiveContribution float64 `json:"positive_contribution"`
	NegativeContribution float64 `json:"negative_contribution"`
	BalanceRatio         float64 `json:"balance_ratio"`
	Diversification      float64 `json:"diversification"`
	WeightCorrelation    float64 `json:"weight_correlation"`
	DominantFactor       string  `json:"dominant_factor"`
}

// CostEstimate breaks a round-trip transaction cost into its components.
// All component values are basis points.
type CostEstimate struct {
	SpreadBps           float64 `json:"spread_bps"`
	ImpactBps           float64 `json:"impact_bps"`
	CommissionBps       float64 `json:"commission_bps"`
	LiquidityPenaltyBps float64 `json:"liquidity_penalty_bps"`
	TurnoverPenaltyBps  float64 `json:"turnover_penalty_bps"`
	TotalBps            float64 `json:"total_bps"`
	Multiplier          float64 `json:"confidence_multiplier"`
}

// VolumeMetrics is the liquidity view an analyzer feeds to the scorer
// and the cost model.
type VolumeMetrics struct {
	AvgDollarVolume float64 `json:"avg_dollar_volume"`
	RelativeVolume  float64 `json:"relative_volume"`
	LiquidityScore  float64 `json:"liquidity_score"` // 0-100
	UpDownRatio     float64 `json:"up_down_ratio"`   // share of up-day volume, 0-1
}

// RiskFreeRate is the reference rate used for Sharpe/Sortino, with
// provenance so a fallback rate is distinguishable from a live one.
type RiskFreeRate struct {
	Rate       float64   `json:"rate"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	IsFallback bool      `json:"is_fallback"`
}

// MarketStats holds everything the statistics engine derives from one
// price history. Metrics that could not be computed carry their neutral
// default and are listed in Degraded.
type MarketStats struct {
	SampleSize int     `json:"sample_size"`
	LastClose  float64 `json:"last_close"`

	MeanReturn     float64 `json:"mean_return"`
	StdDev         float64 `json:"std_dev"`
	Variance       float64 `json:"variance"`
	Skewness       float64 `json:"skewness"`
	ExcessKurtosis float64 `json:"excess_kurtosis"`

	Percentiles map[int]float64 `json:"percentiles,omitempty"`

	VaR95  float64 `json:"var_95"`
	VaR99  float64 `json:"var_99"`
	CVaR95 float64 `json:"cvar_95"`
	CVaR99 float64 `json:"cvar_99"`

	AnnualizedVol float64 `json:"annualized_vol"`
	MaxDrawdown   float64 `json:"max_drawdown"`

	NormalityStat   float64 `json:"normality_stat"`
	NormalityPValue float64 `json:"normality_p_value"`
	BestFit         string  `json:"best_fit_distribution"`

	Beta              float64 `json:"beta"`
	Alpha             float64 `json:"alpha"`
	SystematicRisk    float64 `json:"systematic_risk"`
	IdiosyncraticRisk float64 `json:"idiosyncratic_risk"`

	MomentumDiff      float64         `json:"momentum_differential"`
	RollingMomentum   map[int]float64 `json:"rolling_momentum,omitempty"`
	PriceAcceleration float64         `json:"price_acceleration"`

	TrendShort       string  `json:"trend_short"`
	TrendMedium      string  `json:"trend_medium"`
	TrendLong        string  `json:"trend_long"`
	TrendConsistency float64 `json:"trend_consistency"`
	RegressionSlope  float64 `json:"regression_slope"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	ReturnToRisk float64 `json:"return_to_risk"`

	// PriceRank is the percentile rank of the latest close within the
	// observed series, 0-100. Drives the mean-reversion factor.
	PriceRank float64 `json:"price_rank"`

	RiskFree RiskFreeRate `json:"risk_free"`

	Degraded []string `json:"degraded,omitempty"`
}
