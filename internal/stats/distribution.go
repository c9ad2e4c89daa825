package stats

import "math"

// JarqueBera computes the Jarque-Bera normality statistic and its
// p-value under the chi-squared(2) null, where the survival function is
// exp(-x/2).
func JarqueBera(returns []float64) (stat, pValue float64) {
	n := float64(len(returns))
	if n < 4 {
		return 0, 0.5
	}
	s := Skewness(returns)
	k := ExcessKurtosis(returns)
	stat = n / 6 * (s*s + k*k/4)
	pValue = math.Exp(-stat / 2)
	if pValue > 1 {
		pValue = 1
	}
	return stat, pValue
}

// Candidate distribution names.
const (
	DistNormal    = "normal"
	DistStudentT  = "t"
	DistLognormal = "lognormal"
)

// BestFitDistribution scores a fixed candidate set against the sample
// moments and returns the best fit. Scores are lack-of-fit measures:
// the normal is penalized for any skew or excess kurtosis, Student's t
// tolerates heavy tails but not skew, the lognormal expects positive
// skew.
func BestFitDistribution(returns []float64) string {
	s := Skewness(returns)
	k := ExcessKurtosis(returns)

	scores := map[string]float64{
		DistNormal:    math.Abs(s) + math.Abs(k)/2,
		DistStudentT:  math.Abs(s) + math.Max(0, math.Abs(k)-3)/2 + 0.3,
		DistLognormal: math.Abs(s-0.6) + math.Abs(k)/2 + 0.2,
	}

	best, bestScore := DistNormal, math.Inf(1)
	for _, name := range []string{DistNormal, DistStudentT, DistLognormal} {
		if scores[name] < bestScore {
			best, bestScore = name, scores[name]
		}
	}
	return best
}
