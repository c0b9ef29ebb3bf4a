package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// KRatio measures consistency of growth as the ratio of the slope of
// log-equity over time to that slope's standard error. The regression runs
// through the origin against the 1-based observation index, over the finite
// equity values only. The unweighted ratio is scaled by
// sqrt(periodsPerYear)/n. NaN when fewer than two finite points exist or the
// slope error is zero.
func KRatio(equity []float64, periodsPerYear float64) float64 {
	slope, stderr, n := logEquityTrend(equity, nil)
	if n < 2 || stderr == 0 || math.IsNaN(stderr) {
		return math.NaN()
	}
	return slope * math.Sqrt(periodsPerYear) / (stderr * float64(n))
}

// WeightedKRatio is the time-decayed variant. Observations decay with the
// given half-life (in years, converted to periods via periodsPerYear),
// reversed so the most recent period carries full weight, and squared per
// the weighted-least-squares convention. The result is the bare
// slope-to-error ratio: the unweighted sqrt(periodsPerYear)/n scaling is
// deliberately absent.
func WeightedKRatio(equity []float64, periodsPerYear, halfLifeYears float64) float64 {
	n := 0
	for _, e := range equity {
		if isFinite(e) {
			n++
		}
	}
	if n < 2 {
		return math.NaN()
	}

	halfLife := halfLifeYears * periodsPerYear
	weights := make([]float64, n)
	for i := range weights {
		decay := math.Pow(0.5, float64(n-1-i)/halfLife)
		weights[i] = decay * decay
	}

	slope, stderr, _ := logEquityTrend(equity, weights)
	if stderr == 0 || math.IsNaN(stderr) {
		return math.NaN()
	}
	return slope / stderr
}

// logEquityTrend regresses log of the finite equity values on the 1-based
// index with no intercept, optionally weighted, and returns the slope, its
// standard error and the number of points used. weights, when given, must
// have one entry per finite equity value.
func logEquityTrend(equity []float64, weights []float64) (slope, stderr float64, n int) {
	x := make([]float64, 0, len(equity))
	y := make([]float64, 0, len(equity))
	for _, e := range equity {
		if isFinite(e) {
			x = append(x, float64(len(x)+1))
			y = append(y, math.Log(e))
		}
	}
	n = len(x)
	if n < 2 {
		return 0, math.NaN(), n
	}

	_, slope = stat.LinearRegression(x, y, weights, true)

	var wrss, wxx float64
	for i := range x {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		r := y[i] - slope*x[i]
		wrss += w * r * r
		wxx += w * x[i] * x[i]
	}
	stderr = math.Sqrt(wrss / float64(n-1) / wxx)
	return slope, stderr, n
}
