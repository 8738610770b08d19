// Package interval computes wall-clock coverage of possibly overlapping time ranges.
package interval

import (
	"slices"
	"time"
)

// Interval is a closed time range with End not before Start.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Merge returns the total time covered by at least one interval and whether
// any two intervals overlapped. Touching intervals do not count as overlap.
// The input slice is not modified.
func Merge(intervals []Interval) (time.Duration, bool) {
	if len(intervals) == 0 {
		return 0, false
	}

	sorted := slices.Clone(intervals)
	slices.SortFunc(sorted, func(a, b Interval) int {
		return a.Start.Compare(b.Start)
	})

	var (
		total      time.Duration
		hadOverlap bool
		cur        = sorted[0]
	)

	for _, next := range sorted[1:] {
		if next.Start.Before(cur.End) {
			if next.End.After(cur.End) {
				cur.End = next.End
			}
			hadOverlap = true
			continue
		}
		total += cur.Duration()
		cur = next
	}
	total += cur.Duration()

	return total, hadOverlap
}
