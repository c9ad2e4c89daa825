package stats

import (
	"errors"
	"math"
)

// momentumWindows are the rolling momentum lookbacks in trading days.
var momentumWindows = []int{5, 20, 60}

// trendHorizons are the moving-average lengths for the short, medium and
// long trend reads.
var trendHorizons = [3]int{10, 20, 50}

// Trend direction labels.
const (
	TrendUp   = "UP"
	TrendDown = "DOWN"
	TrendFlat = "FLAT"
)

// MomentumDifferential is the mean of the most recent 20% of the return
// series minus the mean of the remainder.
func MomentumDifferential(returns []float64) float64 {
	if len(returns) < 5 {
		return 0
	}
	split := len(returns) - len(returns)/5
	if split <= 0 || split >= len(returns) {
		return 0
	}
	return Mean(returns[split:]) - Mean(returns[:split])
}

// RollingMomentum computes the simple return over each window that fits
// in the series.
func RollingMomentum(closes []float64, windows []int) map[int]float64 {
	out := make(map[int]float64, len(windows))
	last := len(closes) - 1
	for _, w := range windows {
		if last-w < 0 || closes[last-w] <= 0 {
			out[w] = 0
			continue
		}
		out[w] = closes[last]/closes[last-w] - 1
	}
	return out
}

// PriceAcceleration is the second difference of the tail of the
// cumulative-return curve: positive when the climb is steepening.
func PriceAcceleration(returns []float64) float64 {
	if len(returns) < 3 {
		return 0
	}
	var c1, c2, c3 float64
	for _, r := range returns[:len(returns)-2] {
		c1 += r
	}
	c2 = c1 + returns[len(returns)-2]
	c3 = c2 + returns[len(returns)-1]
	return c3 - 2*c2 + c1
}

// flatBand is the relative distance from the moving average inside
// which the trend reads FLAT.
const flatBand = 0.001

// TrendDirection compares the latest close to its horizon-length simple
// moving average.
func TrendDirection(closes []float64, horizon int) string {
	if len(closes) < horizon || horizon < 1 {
		return TrendFlat
	}
	ma := Mean(closes[len(closes)-horizon:])
	if ma == 0 {
		return TrendFlat
	}
	last := closes[len(closes)-1]
	switch {
	case last > ma*(1+flatBand):
		return TrendUp
	case last < ma*(1-flatBand):
		return TrendDown
	default:
		return TrendFlat
	}
}

// TrendConsistency is the fraction of days whose close sits above the
// short-horizon moving average, over the span such an average exists.
func TrendConsistency(closes []float64, horizon int) float64 {
	if len(closes) < horizon+1 || horizon < 1 {
		return 0.5
	}
	var above, total int
	for i := horizon; i < len(closes); i++ {
		ma := Mean(closes[i-horizon : i])
		if closes[i] > ma {
			above++
		}
		total++
	}
	if total == 0 {
		return 0.5
	}
	return float64(above) / float64(total)
}

// RegressionSlope fits closes against time by least squares and
// normalizes the slope by the mean price, giving fractional drift per
// bar.
func RegressionSlope(closes []float64) (float64, error) {
	n := float64(len(closes))
	if n < 2 {
		return 0, errors.New("series too short for regression")
	}
	meanX := (n - 1) / 2
	meanY := Mean(closes)
	var num, den float64
	for i, y := range closes {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 || meanY == 0 {
		return 0, errors.New("degenerate regression")
	}
	slope := num / den / math.Abs(meanY)
	return slope, nil
}
