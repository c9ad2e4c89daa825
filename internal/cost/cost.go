// Package cost estimates round-trip transaction cost for a proposed
// trade and downgrades the signal or confidence when the cost makes the
// trade unattractive.
package cost

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ColeMorton/trading-sub009/internal/history"
	"github.com/ColeMorton/trading-sub009/models"
)

const (
	// signalHistoryCap bounds the per-ticker signal buffer.
	signalHistoryCap = 100

	// turnoverWindow is the trailing span over which signal flips count
	// toward the turnover penalty.
	turnoverWindow = 30 * 24 * time.Hour

	// downgradeBps is the total cost beyond which the proposed signal is
	// stepped one notch toward hold.
	downgradeBps = 50

	// downgradePenalty is the extra confidence haircut applied alongside
	// a cost downgrade.
	downgradePenalty = 0.05

	confidenceFloor = 0.30
	confidenceCeil  = 0.95
)

// signalEvent is one recorded signal for a ticker.
type signalEvent struct {
	Signal models.Signal
	At     time.Time
}

// Adjuster owns the per-ticker signal history and applies cost-based
// signal adjustments.
type Adjuster struct {
	commissionBps float64

	mu        sync.Mutex
	histories map[string]*history.Ring[signalEvent]

	now    func() time.Time
	logger zerolog.Logger
}

// New creates an adjuster charging a flat commission per trade.
func New(commissionBps float64) *Adjuster {
	return &Adjuster{
		commissionBps: commissionBps,
		histories:     make(map[string]*history.Ring[signalEvent]),
		now:           time.Now,
		logger:        log.With().Str("component", "cost_adjuster").Logger(),
	}
}

func (a *Adjuster) historyFor(ticker string) *history.Ring[signalEvent] {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.histories[ticker]
	if !ok {
		h = history.NewRing[signalEvent](signalHistoryCap)
		a.histories[ticker] = h
	}
	return h
}

// Estimate computes the independent cost components for trading ticker
// at the given price under the supplied liquidity conditions.
func (a *Adjuster) Estimate(ticker string, vm models.VolumeMetrics, price float64) models.CostEstimate {
	est := models.CostEstimate{
		SpreadBps:           spreadBps(vm.LiquidityScore, price),
		ImpactBps:           impactBps(vm),
		CommissionBps:       a.commissionBps,
		LiquidityPenaltyBps: liquidityPenaltyBps(vm.LiquidityScore),
		TurnoverPenaltyBps:  a.turnoverPenaltyBps(ticker),
	}
	est.TotalBps = est.SpreadBps + est.ImpactBps + est.CommissionBps +
		est.LiquidityPenaltyBps + est.TurnoverPenaltyBps
	est.Multiplier = costMultiplier(est.TotalBps)
	return est
}

// spreadBps tiers the half-spread cost by liquidity score, with a
// penny-stock multiplier on cheap names.
func spreadBps(liquidity, price float64) float64 {
	var bps float64
	switch {
	case liquidity >= 80:
		bps = 2
	case liquidity >= 60:
		bps = 5
	case liquidity >= 40:
		bps = 10
	case liquidity >= 20:
		bps = 20
	default:
		bps = 40
	}
	switch {
	case price > 0 && price < 1:
		bps *= 3
	case price > 0 && price < 5:
		bps *= 1.5
	}
	return bps
}

// impactBps tiers market impact by average dollar volume and adjusts for
// a thin tape and poor liquidity.
func impactBps(vm models.VolumeMetrics) float64 {
	var bps float64
	switch {
	case vm.AvgDollarVolume >= 1e9:
		bps = 1
	case vm.AvgDollarVolume >= 1e8:
		bps = 3
	case vm.AvgDollarVolume >= 1e7:
		bps = 8
	case vm.AvgDollarVolume >= 1e6:
		bps = 20
	default:
		bps = 40
	}
	if vm.RelativeVolume > 0 && vm.RelativeVolume < 0.5 {
		bps *= 1.5
	}
	if vm.LiquidityScore < 30 {
		bps *= 1.3
	}
	return bps
}

func liquidityPenaltyBps(liquidity float64) float64 {
	switch {
	case liquidity >= 70:
		return 0
	case liquidity >= 50:
		return 3
	case liquidity >= 30:
		return 8
	default:
		return 15
	}
}

// turnoverPenaltyBps counts signal changes for the ticker inside the
// trailing window and tiers the churn penalty.
func (a *Adjuster) turnoverPenaltyBps(ticker string) float64 {
	events := a.historyFor(ticker).Snapshot()
	cutoff := a.now().Add(-turnoverWindow)

	changes := 0
	var prev *signalEvent
	for i := range events {
		ev := events[i]
		if ev.At.Before(cutoff) {
			continue
		}
		if prev != nil && ev.Signal != prev.Signal {
			changes++
		}
		prev = &events[i]
	}

	switch {
	case changes >= 10:
		return 25
	case changes >= 5:
		return 15
	case changes >= 3:
		return 8
	default:
		return 0
	}
}

// costMultiplier maps total cost to the confidence multiplier step
// function.
func costMultiplier(totalBps float64) float64 {
	switch {
	case totalBps < 10:
		return 1.0
	case totalBps < 25:
		return 0.95
	case totalBps < 50:
		return 0.90
	case totalBps < 100:
		return 0.80
	default:
		return 0.70
	}
}

// downgrade steps a signal one notch toward hold.
func downgrade(s models.Signal) models.Signal {
	switch s {
	case models.StrongBuy:
		return models.Buy
	case models.StrongSell:
		return models.Sell
	case models.Buy, models.Sell:
		return models.Hold
	}
	return s
}

// Adjust applies est to the proposed signal, records the final signal in
// the ticker's history and returns the adjusted signal, confidence and a
// cost reasoning note. Confidence is always clamped to [0.3, 0.95].
func (a *Adjuster) Adjust(ticker string, signal models.Signal, confidence float64, est models.CostEstimate) (models.Signal, float64, string) {
	adjusted := signal
	conf := confidence * est.Multiplier
	note := fmt.Sprintf("total cost %.1f bps", est.TotalBps)

	if est.TotalBps > downgradeBps && adjusted != models.Hold {
		adjusted = downgrade(adjusted)
		conf -= downgradePenalty
		note = fmt.Sprintf("%s exceeds %d bps, downgraded %s to %s", note, downgradeBps, signal, adjusted)
	}
	if est.TurnoverPenaltyBps >= 25 && adjusted != models.Hold {
		adjusted = models.Hold
		note += ", high turnover forces HOLD"
	}

	if conf < confidenceFloor {
		conf = confidenceFloor
	}
	if conf > confidenceCeil {
		conf = confidenceCeil
	}

	a.historyFor(ticker).Append(signalEvent{Signal: adjusted, At: a.now()})

	a.logger.Debug().
		Str("ticker", ticker).
		Float64("total_bps", est.TotalBps).
		Str("signal", adjusted.String()).
		Float64("confidence", conf).
		Msg("cost adjusted")
	return adjusted, conf, note
}

// HistoryLen reports the current signal-history depth for ticker.
func (a *Adjuster) HistoryLen(ticker string) int {
	a.mu.Lock()
	h, ok := a.histories[ticker]
	a.mu.Unlock()
	if !ok {
		return 0
	}
	return h.Len()
}
