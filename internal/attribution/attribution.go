// Package attribution records factor contributions across scoring passes
// and derives rolling consistency and efficiency metrics from the
// trailing history.
package attribution

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/internal/history"
	"github.com/ColeMorton/trading-sub009/models"
)

const (
	// factorHistoryCap bounds the per-factor record buffer.
	factorHistoryCap = 100

	// rollingWindow is the trailing record count for the derived metrics.
	rollingWindow = 20
)

// Record is one factor observation from one scoring pass.
type Record struct {
	Score        float64
	Contribution float64
	Weight       float64
	At           time.Time

	// Outcome is the realized result later attached to this pass, used
	// for the efficiency and accuracy metrics.
	Outcome    float64
	HasOutcome bool
}

// FactorMetrics are the rolling statistics for one factor.
type FactorMetrics struct {
	AvgScore          float64 `json:"avg_score"`
	ScoreVolatility   float64 `json:"score_volatility"`
	Consistency       float64 `json:"consistency"`
	ScoreTrend        float64 `json:"score_trend"`
	ContributionTrend float64 `json:"contribution_trend"`
	Efficiency        float64 `json:"efficiency"`
	Accuracy          float64 `json:"accuracy"`
	Records           int     `json:"records"`
}

// Attributor owns the bounded per-factor history.
type Attributor struct {
	mu        sync.Mutex
	histories map[string]*history.Ring[Record]

	now    func() time.Time
	logger zerolog.Logger
}

// New creates an empty attributor.
func New() *Attributor {
	return &Attributor{
		histories: make(map[string]*history.Ring[Record]),
		now:       time.Now,
		logger:    log.With().Str("component", "attributor").Logger(),
	}
}

func (a *Attributor) historyFor(factor string) *history.Ring[Record] {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.histories[factor]
	if !ok {
		h = history.NewRing[Record](factorHistoryCap)
		a.histories[factor] = h
	}
	return h
}

// RecordPass appends one record per factor and returns the aggregate
// summary for the pass.
func (a *Attributor) RecordPass(factors []models.FactorAttribution) *models.AttributionSummary {
	at := a.now()
	for _, f := range factors {
		a.historyFor(f.Factor).Append(Record{
			Score:        f.Score,
			Contribution: f.Contribution,
			Weight:       f.Weight,
			At:           at,
		})
	}
	return summarize(factors)
}

// RecordOutcome attaches a realized outcome to the factor's most recent
// record that does not have one yet. The update runs in place under the
// buffer's lock, so passes recorded concurrently are never lost.
func (a *Attributor) RecordOutcome(factor string, outcome float64) {
	a.historyFor(factor).Mutate(func(records []Record) {
		for i := len(records) - 1; i >= 0; i-- {
			if !records[i].HasOutcome {
				records[i].Outcome = outcome
				records[i].HasOutcome = true
				return
			}
		}
	})
}

// Metrics derives the rolling statistics for factor from its trailing
// records.
func (a *Attributor) Metrics(factor string) FactorMetrics {
	records := a.historyFor(factor).Tail(rollingWindow)
	m := FactorMetrics{Records: len(records)}
	if len(records) == 0 {
		m.Consistency = 0.5
		return m
	}

	scores := make([]float64, len(records))
	contributions := make([]float64, len(records))
	for i, r := range records {
		scores[i] = r.Score
		contributions[i] = r.Contribution
	}

	m.AvgScore = mean(scores)
	m.ScoreVolatility = stdev(scores)
	m.Consistency = consistency(contributions)
	m.ScoreTrend = slope(scores)
	m.ContributionTrend = slope(contributions)
	m.Efficiency, m.Accuracy = outcomeMetrics(records)
	return m
}

// HistoryLen reports the stored record count for factor.
func (a *Attributor) HistoryLen(factor string) int {
	a.mu.Lock()
	h, ok := a.histories[factor]
	a.mu.Unlock()
	if !ok {
		return 0
	}
	return h.Len()
}

// summarize computes the per-pass aggregate view.
func summarize(factors []models.FactorAttribution) *models.AttributionSummary {
	s := &models.AttributionSummary{}
	if len(factors) == 0 {
		return s
	}

	var dominant float64
	weights := make([]float64, len(factors))
	absContribs := make([]float64, len(factors))
	var absTotal float64
	for i, f := range factors {
		s.TotalContribution += f.Contribution
		if f.Contribution >= 0 {
			s.PositiveContribution += f.Contribution
		} else {
			s.NegativeContribution += f.Contribution
		}
		ac := math.Abs(f.Contribution)
		if ac > dominant {
			dominant = ac
			s.DominantFactor = f.Factor
		}
		weights[i] = f.Weight
		absContribs[i] = ac
		absTotal += ac
	}

	gross := s.PositiveContribution - s.NegativeContribution
	if gross > 0 {
		s.BalanceRatio = s.PositiveContribution / gross
	} else {
		s.BalanceRatio = 0.5
	}

	if absTotal > 0 {
		shares := make([]float64, len(absContribs))
		for i, ac := range absContribs {
			shares[i] = ac / absTotal
		}
		s.Diversification = clamp01(1 - stdev(shares)*math.Sqrt(float64(len(shares))))
	}

	s.WeightCorrelation = correlation(weights, absContribs)
	return s
}

// outcomeMetrics correlates scores with realized outcomes over the
// records that have them. Accuracy is the directional hit rate.
func outcomeMetrics(records []Record) (efficiency, accuracy float64) {
	var scores, outcomes []float64
	var hits, calls int
	for _, r := range records {
		if !r.HasOutcome {
			continue
		}
		scores = append(scores, r.Score)
		outcomes = append(outcomes, r.Outcome)
		if r.Score != 0 && r.Outcome != 0 {
			calls++
			if (r.Score > 0) == (r.Outcome > 0) {
				hits++
			}
		}
	}
	if len(scores) >= 2 {
		efficiency = correlation(scores, outcomes)
	}
	if calls > 0 {
		accuracy = float64(hits) / float64(calls)
	}
	return efficiency, accuracy
}

// consistency is 1 minus the relative dispersion of the contribution
// stream, clamped to [0,1].
func consistency(xs []float64) float64 {
	if len(xs) < 2 {
		return 0.5
	}
	var absMean float64
	for _, x := range xs {
		absMean += math.Abs(x)
	}
	absMean /= float64(len(xs))
	if absMean == 0 {
		return 0.5
	}
	return clamp01(1 - stdev(xs)/absMean)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// slope is the least-squares trend of xs over its index.
func slope(xs []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	meanX := (n - 1) / 2
	meanY := mean(xs)
	var num, den float64
	for i, y := range xs {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	meanX, meanY := mean(xs), mean(ys)
	var num, denX, denY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	if denX == 0 || denY == 0 {
		return 0
	}
	return num / math.Sqrt(denX*denY)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
