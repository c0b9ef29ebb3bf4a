// Package series holds the raw return-series normalization helpers that run
// before any metric is computed.
package series

import (
	"math"
	"time"
)

// Sanitize normalizes an aligned (timestamps, returns) pair containing
// non-finite entries. The first finite return splits the series: entries
// before it are zeroed (leadingToZero) or dropped from both slices in
// lockstep; remaining non-finite entries are then zeroed (interiorToZero) or
// dropped the same way. When no finite value exists at all the input passes
// through untouched. Order and index alignment are always preserved, and the
// caller's slices are never mutated.
func Sanitize(timestamps []time.Time, returns []float64, leadingToZero, interiorToZero bool) ([]time.Time, []float64) {
	first := -1
	for i, r := range returns {
		if isFinite(r) {
			first = i
			break
		}
	}
	if first < 0 {
		ts := make([]time.Time, len(timestamps))
		rs := make([]float64, len(returns))
		copy(ts, timestamps)
		copy(rs, returns)
		return ts, rs
	}

	var ts []time.Time
	var rs []float64
	if leadingToZero {
		ts = make([]time.Time, len(timestamps))
		rs = make([]float64, len(returns))
		copy(ts, timestamps)
		copy(rs, returns)
		for i := 0; i < first; i++ {
			rs[i] = 0.0
		}
	} else {
		ts = append([]time.Time(nil), timestamps[first:]...)
		rs = append([]float64(nil), returns[first:]...)
	}

	if interiorToZero {
		for i, r := range rs {
			if !isFinite(r) {
				rs[i] = 0.0
			}
		}
		return ts, rs
	}

	outTS := ts[:0]
	outRS := rs[:0]
	for i, r := range rs {
		if isFinite(r) {
			outTS = append(outTS, ts[i])
			outRS = append(outRS, r)
		}
	}
	return outTS, outRS
}

// IsStrictlyIncreasing reports whether timestamps are in strictly ascending
// order with no duplicates.
func IsStrictlyIncreasing(timestamps []time.Time) bool {
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
