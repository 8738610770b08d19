package interval_test

import (
	"testing"
	"time"

	"github.com/AbsaOSS/spot/internal/interval"
	"github.com/stretchr/testify/assert"
)

func ms(start, end int64) interval.Interval {
	return interval.Interval{Start: time.UnixMilli(start), End: time.UnixMilli(end)}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		intervals   []interval.Interval
		wantTotal   time.Duration
		wantOverlap bool
	}{
		{
			name:        "empty",
			intervals:   nil,
			wantTotal:   0,
			wantOverlap: false,
		},
		{
			name:        "single",
			intervals:   []interval.Interval{ms(10, 40)},
			wantTotal:   30 * time.Millisecond,
			wantOverlap: false,
		},
		{
			name:        "overlap then gap",
			intervals:   []interval.Interval{ms(0, 100), ms(50, 150), ms(200, 250)},
			wantTotal:   200 * time.Millisecond,
			wantOverlap: true,
		},
		{
			name:        "unsorted input",
			intervals:   []interval.Interval{ms(200, 250), ms(50, 150), ms(0, 100)},
			wantTotal:   200 * time.Millisecond,
			wantOverlap: true,
		},
		{
			name:        "touching is not overlap",
			intervals:   []interval.Interval{ms(0, 100), ms(100, 200)},
			wantTotal:   200 * time.Millisecond,
			wantOverlap: false,
		},
		{
			name:        "contained interval",
			intervals:   []interval.Interval{ms(0, 1000), ms(100, 200), ms(300, 400)},
			wantTotal:   1000 * time.Millisecond,
			wantOverlap: true,
		},
		{
			name:        "zero length intervals",
			intervals:   []interval.Interval{ms(5, 5), ms(5, 5)},
			wantTotal:   0,
			wantOverlap: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			total, overlap := interval.Merge(tt.intervals)

			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantOverlap, overlap)
		})
	}
}

func TestMerge_CoverageNeverExceedsSum(t *testing.T) {
	t.Parallel()

	sets := [][]interval.Interval{
		{ms(0, 10), ms(5, 20), ms(30, 31)},
		{ms(0, 10), ms(10, 20), ms(20, 30)},
		{ms(3, 9), ms(1, 2), ms(0, 50), ms(49, 60)},
	}

	for _, set := range sets {
		var sum time.Duration
		for _, iv := range set {
			sum += iv.Duration()
		}

		total, overlap := interval.Merge(set)

		assert.LessOrEqual(t, total, sum)
		assert.Equal(t, !overlap, total == sum)
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []interval.Interval{ms(200, 250), ms(0, 100)}
	_, _ = interval.Merge(in)

	assert.Equal(t, ms(200, 250), in[0])
}
