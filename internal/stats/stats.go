// Package stats implements the numeric catalog for periodic-return series:
// annualization, risk-adjusted ratios, drawdowns, trailing windows and
// calendar bucketing. All functions are pure and deterministic. Numeric
// degeneracies (empty input, zero-variance denominators) yield NaN and
// propagate; structural violations such as misaligned slices are programmer
// errors and panic.
package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/quantrail/riskstats/internal/freq"
)

const (
	tradingDaysPerYear = 252.0
	daysPerYear        = 365.0
)

// PeriodsPerYear infers the sampling frequency from the dominant gap between
// timestamps. A whole-month gap (28-31 days) means monthly data, otherwise
// the gap divides the 252 trading days of a year. NaN when the series is
// empty or no periodic pattern is discernible.
func PeriodsPerYear(timestamps []time.Time) float64 {
	if len(timestamps) == 0 {
		return math.NaN()
	}
	gap := freq.DominantGap(timestamps)
	if gap == 0 {
		return math.NaN()
	}
	if gap >= 28 && gap <= 31 {
		return 12
	}
	return tradingDaysPerYear / float64(gap)
}

// AnnualizedMean is the arithmetic mean of the finite returns scaled to a
// yearly figure. NaN for an empty series.
func AnnualizedMean(returns []float64, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	return stat.Mean(finite(returns), nil) * periodsPerYear
}

// NumPeriods estimates how many sampling periods the series spans: elapsed
// calendar time in 365-day years times the sampling frequency, rounded to
// the nearest whole period. Timestamps must be strictly increasing. NaN for
// an empty series.
func NumPeriods(timestamps []time.Time, periodsPerYear float64) float64 {
	if len(timestamps) == 0 {
		return math.NaN()
	}
	span := timestamps[len(timestamps)-1].Sub(timestamps[0])
	years := span.Hours() / 24 / daysPerYear
	return math.Round(years * periodsPerYear)
}

// GeometricMean is the annualized compound growth rate over the rows whose
// return is finite: the product of (1+r), taken to the power of
// periodsPerYear over the spanned period count, minus one. NaN for an empty
// series.
func GeometricMean(timestamps []time.Time, returns []float64, periodsPerYear float64) float64 {
	if len(timestamps) != len(returns) {
		panic("stats: timestamps and returns length mismatch")
	}
	ts, rs := finiteRows(timestamps, returns)
	if len(rs) == 0 {
		return math.NaN()
	}

	prod := 1.0
	for _, r := range rs {
		prod *= 1 + r
	}
	n := NumPeriods(ts, periodsPerYear)
	return math.Pow(prod, periodsPerYear/n) - 1
}

// StdDev is the population standard deviation of the finite returns. NaN for
// an empty series.
func StdDev(returns []float64) float64 {
	vals := finite(returns)
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.PopStdDev(vals, nil)
}

// Sharpe divides the annualized mean return by annualized total volatility.
// Non-finite returns count as zero. NaN when the series is empty, the mean
// is non-finite, the frequency is non-positive, or volatility is zero.
func Sharpe(returns []float64, annualizedMean, periodsPerYear float64) float64 {
	if len(returns) == 0 || !isFinite(annualizedMean) || periodsPerYear <= 0 {
		return math.NaN()
	}
	denom := stat.PopStdDev(zeroNonFinite(returns), nil) * math.Sqrt(periodsPerYear)
	if denom == 0 {
		return math.NaN()
	}
	return annualizedMean / denom
}

// Sortino divides the annualized mean return by annualized downside-only
// volatility: positive returns are zeroed before the deviation is taken.
// Guards as for Sharpe.
func Sortino(returns []float64, annualizedMean, periodsPerYear float64) float64 {
	if len(returns) == 0 || !isFinite(annualizedMean) || periodsPerYear <= 0 {
		return math.NaN()
	}
	downside := zeroNonFinite(returns)
	for i, r := range downside {
		if r > 0 {
			downside[i] = 0
		}
	}
	denom := stat.PopStdDev(downside, nil) * math.Sqrt(periodsPerYear)
	if denom == 0 {
		return math.NaN()
	}
	return annualizedMean / denom
}

// MAR divides the annualized mean return by the maximum drawdown. NaN when
// the series is empty or the drawdown is NaN or zero.
func MAR(returns []float64, periodsPerYear, maxDrawdown float64) float64 {
	if len(returns) == 0 || math.IsNaN(maxDrawdown) || maxDrawdown == 0 {
		return math.NaN()
	}
	return stat.Mean(finite(returns), nil) * periodsPerYear / maxDrawdown
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite returns the finite subset of vs, preserving order.
func finite(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// finiteRows keeps the rows of an aligned pair whose value is finite.
func finiteRows(ts []time.Time, vs []float64) ([]time.Time, []float64) {
	outTS := make([]time.Time, 0, len(ts))
	outVS := make([]float64, 0, len(vs))
	for i, v := range vs {
		if isFinite(v) {
			outTS = append(outTS, ts[i])
			outVS = append(outVS, v)
		}
	}
	return outTS, outVS
}

// zeroNonFinite copies vs with non-finite entries replaced by zero.
func zeroNonFinite(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if isFinite(v) {
			out[i] = v
		}
	}
	return out
}
