package dispatch

import (
	"github.com/ColeMorton/trading-sub009/models"
)

// strategyOverlay computes the moving-average view for the requested
// strategy windows: the fast and slow lines, their spread relative to
// price and the crossover state (+1 fast above slow, -1 below, 0 flat).
func strategyOverlay(closes []float64, spec models.StrategySpec) map[string]float64 {
	out := make(map[string]float64, 6)
	if len(closes) < spec.SlowWindow || spec.SlowWindow <= 0 {
		return out
	}

	var fast, slow float64
	switch spec.Strategy {
	case "SMA":
		fast = sma(closes, spec.FastWindow)
		slow = sma(closes, spec.SlowWindow)
	case "EMA", "MACD":
		fast = ema(closes, spec.FastWindow)
		slow = ema(closes, spec.SlowWindow)
	default:
		return out
	}

	out["fast_ma"] = fast
	out["slow_ma"] = slow
	last := closes[len(closes)-1]
	if last != 0 {
		out["ma_spread"] = (fast - slow) / last
	}
	out["cross_state"] = signOf(fast - slow)

	if spec.Strategy == "MACD" && spec.SignalWindow > 0 {
		macdLine := macdSeries(closes, spec.FastWindow, spec.SlowWindow)
		if len(macdLine) > 0 {
			signal := ema(macdLine, spec.SignalWindow)
			macd := macdLine[len(macdLine)-1]
			out["macd"] = macd
			out["macd_signal"] = signal
			out["macd_hist"] = macd - signal
			out["cross_state"] = signOf(macd - signal)
		}
	}
	return out
}

func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// sma is the simple moving average of the last period closes.
func sma(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// ema is the final value of the exponential moving average over closes.
func ema(closes []float64, period int) float64 {
	s := emaSeries(closes, period)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// emaSeries seeds with the first-period SMA and smooths forward.
func emaSeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(closes)-period+1)
	value := sma(closes[:period], period)
	out = append(out, value)
	for _, c := range closes[period:] {
		value = c*k + value*(1-k)
		out = append(out, value)
	}
	return out
}

// macdSeries is the fast-EMA minus slow-EMA line, aligned to the span
// where both exist.
func macdSeries(closes []float64, fastWindow, slowWindow int) []float64 {
	fast := emaSeries(closes, fastWindow)
	slow := emaSeries(closes, slowWindow)
	if len(fast) == 0 || len(slow) == 0 {
		return nil
	}
	n := len(slow)
	if len(fast) < n {
		n = len(fast)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = fast[len(fast)-n+i] - slow[len(slow)-n+i]
	}
	return out
}

// holdingMetrics derives position-level figures from the entry date:
// bars held and the return since entry. Entry dates before the history
// window fall back to the earliest bar.
func holdingMetrics(candles []models.Candle, entryDate string) map[string]float64 {
	out := make(map[string]float64, 2)
	if len(candles) == 0 {
		return out
	}

	entryIdx := 0
	found := false
	for i, c := range candles {
		// Datetime is YYYY-MM-DD, so string order is date order.
		if c.Datetime >= entryDate {
			entryIdx = i
			found = true
			break
		}
	}
	if !found {
		// Entry after the last bar: nothing held yet.
		return out
	}

	entry := candles[entryIdx].Close
	last := candles[len(candles)-1].Close
	if entry > 0 {
		out["holding_return"] = last/entry - 1
	}
	out["holding_bars"] = float64(len(candles) - 1 - entryIdx)
	return out
}
