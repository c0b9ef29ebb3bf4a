// Package freq infers the dominant sampling gap of a timestamp sequence.
package freq

import "time"

// DominantGap returns the modal spacing between successive timestamps,
// measured in whole days (each difference rounded to the nearest day). Ties
// go to the smaller gap. It returns 0 when fewer than two timestamps exist
// or when the modal rounded gap is zero, meaning no daily-or-coarser
// periodic pattern is discernible.
func DominantGap(timestamps []time.Time) int {
	if len(timestamps) < 2 {
		return 0
	}

	counts := make(map[int]int)
	for i := 1; i < len(timestamps); i++ {
		d := timestamps[i].Sub(timestamps[i-1])
		gap := int((d + 12*time.Hour) / (24 * time.Hour))
		counts[gap]++
	}

	mode, best := 0, 0
	for gap, n := range counts {
		if n > best || (n == best && gap < mode) {
			mode, best = gap, n
		}
	}
	return mode
}
