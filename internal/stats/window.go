package stats

import "time"

// ThreeYearStart returns the index of the first timestamp strictly after the
// trailing three-calendar-year cutoff (the last timestamp shifted back three
// years). The suffix slices from this index form the trailing-3yr window.
// Returns 0 for an empty series.
func ThreeYearStart(timestamps []time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}
	cutoff := timestamps[len(timestamps)-1].AddDate(-3, 0, 0)
	for i, ts := range timestamps {
		if ts.After(cutoff) {
			return i
		}
	}
	return len(timestamps)
}

// BucketByYear groups an aligned (timestamps, returns) pair by the calendar
// year of each timestamp, preserving first-appearance order.
func BucketByYear(timestamps []time.Time, returns []float64) (years []int, bucketTS [][]time.Time, bucketRS [][]float64) {
	if len(timestamps) != len(returns) {
		panic("stats: timestamps and returns length mismatch")
	}
	pos := make(map[int]int)
	for i, ts := range timestamps {
		y := ts.Year()
		j, seen := pos[y]
		if !seen {
			j = len(years)
			pos[y] = j
			years = append(years, y)
			bucketTS = append(bucketTS, nil)
			bucketRS = append(bucketRS, nil)
		}
		bucketTS[j] = append(bucketTS[j], ts)
		bucketRS[j] = append(bucketRS[j], returns[i])
	}
	return years, bucketTS, bucketRS
}

// AnnualReturns reduces each calendar-year bucket to its annualized compound
// growth rate, using the bucket's own timestamps with the series-wide
// sampling frequency.
func AnnualReturns(timestamps []time.Time, returns []float64, periodsPerYear float64) (years []int, values []float64) {
	years, bucketTS, bucketRS := BucketByYear(timestamps, returns)
	values = make([]float64, len(years))
	for i := range years {
		values[i] = GeometricMean(bucketTS[i], bucketRS[i], periodsPerYear)
	}
	return years, values
}
