package stats

import "math"

// Equity compounds returns into an equity curve: cumulative product of
// (1+r) scaled by the starting equity.
func Equity(returns []float64, startingEquity float64) []float64 {
	out := make([]float64, len(returns))
	level := startingEquity
	for i, r := range returns {
		level *= 1 + r
		out[i] = level
	}
	return out
}

// RollingDrawdown is the fractional decline of equity from its running peak,
// zero whenever equity sits at a new high. Values are always >= 0 for finite
// equity.
func RollingDrawdown(equity []float64) []float64 {
	out := make([]float64, len(equity))
	peak := math.Inf(-1)
	for i, e := range equity {
		if e > peak {
			peak = e
		}
		if e >= peak {
			out[i] = 0
		} else {
			out[i] = (peak - e) / peak
		}
	}
	return out
}

// MaxDrawdown is the largest finite value of a drawdown series. NaN when the
// series is empty or holds no finite value.
func MaxDrawdown(drawdowns []float64) float64 {
	idx := MaxDrawdownIndex(drawdowns)
	if idx < 0 {
		return math.NaN()
	}
	return drawdowns[idx]
}

// MaxDrawdownIndex is the position of the largest finite drawdown, -1 when
// none exists. Earlier positions win ties.
func MaxDrawdownIndex(drawdowns []float64) int {
	idx := -1
	best := math.Inf(-1)
	for i, d := range drawdowns {
		if isFinite(d) && d > best {
			idx, best = i, d
		}
	}
	return idx
}

// DrawdownStartIndex is the latest position strictly before troughIdx where
// the drawdown was <= 0, i.e. the last time equity sat at its peak before
// the decline. -1 when no such position exists or troughIdx is out of range.
func DrawdownStartIndex(drawdowns []float64, troughIdx int) int {
	if troughIdx < 0 || troughIdx > len(drawdowns) {
		return -1
	}
	for i := troughIdx - 1; i >= 0; i-- {
		if drawdowns[i] <= 0 {
			return i
		}
	}
	return -1
}
