package aggregate

import (
	"math"
	"strings"
)

// Func computes one statistic over a column. It returns false when the
// statistic is undefined for the column.
type Func struct {
	Name  string
	Apply func(Column) (any, bool)
}

// Funcs lists the statistics applied to each semantic type.
type Funcs map[SemanticType][]Func

// RSDZeroMean selects what rsd reports for a column whose mean is zero.
type RSDZeroMean string

const (
	// RSDSkip leaves rsd out of the result.
	RSDSkip RSDZeroMean = "skip"
	// RSDZero reports rsd as 0.
	RSDZero RSDZeroMean = "zero"
)

// Option customises DefaultFuncs.
type Option func(*options)

type options struct {
	rsdZeroMean RSDZeroMean
}

// WithRSDZeroMean sets the rsd policy for zero-mean columns.
func WithRSDZeroMean(p RSDZeroMean) Option {
	return func(o *options) {
		o.rsdZeroMean = p
	}
}

// DefaultFuncs returns the standard statistics for every semantic type.
func DefaultFuncs(opts ...Option) Funcs {
	o := options{rsdZeroMean: RSDSkip}
	for _, opt := range opts {
		opt(&o)
	}

	return Funcs{
		Numeric: {
			{"min", numMin},
			{"max", numMax},
			{"sum", numSum},
			{"mean", numMean},
			{"std", numStd},
			{"nunique", numUnique},
			{"count_zeroes", numZeroes},
			{"count_not_null", countNotNull},
			{"rsd", numRSD(o.rsdZeroMean)},
		},
		Text: {
			{"count_not_null", countNotNull},
			{"nunique", textUnique},
			{"concat_unique_values", textConcat},
		},
		Timestamp: {
			{"min", timeMin},
			{"max", timeMax},
		},
		Boolean: {
			{"any", boolAny},
			{"all", boolAll},
			{"sum", boolSum},
		},
	}
}

func countNotNull(c Column) (any, bool) {
	return c.Len(), true
}

func numMin(c Column) (any, bool) {
	if len(c.Numbers) == 0 {
		return nil, false
	}
	m := c.Numbers[0]
	for _, v := range c.Numbers[1:] {
		m = math.Min(m, v)
	}
	return m, true
}

func numMax(c Column) (any, bool) {
	if len(c.Numbers) == 0 {
		return nil, false
	}
	m := c.Numbers[0]
	for _, v := range c.Numbers[1:] {
		m = math.Max(m, v)
	}
	return m, true
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

// numSum is 0 for a column without values.
func numSum(c Column) (any, bool) {
	return sum(c.Numbers), true
}

func mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	return sum(vals) / float64(len(vals)), true
}

func numMean(c Column) (any, bool) {
	m, ok := mean(c.Numbers)
	if !ok {
		return nil, false
	}
	return m, true
}

// std is the sample standard deviation; undefined below two values.
func std(vals []float64) (float64, bool) {
	n := len(vals)
	if n < 2 {
		return 0, false
	}
	m, _ := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}

func numStd(c Column) (any, bool) {
	s, ok := std(c.Numbers)
	if !ok {
		return nil, false
	}
	return s, true
}

func numUnique(c Column) (any, bool) {
	seen := make(map[float64]struct{}, len(c.Numbers))
	for _, v := range c.Numbers {
		seen[v] = struct{}{}
	}
	return len(seen), true
}

func numZeroes(c Column) (any, bool) {
	n := 0
	for _, v := range c.Numbers {
		if v == 0 {
			n++
		}
	}
	return n, true
}

func numRSD(zeroMean RSDZeroMean) func(Column) (any, bool) {
	return func(c Column) (any, bool) {
		m, ok := mean(c.Numbers)
		if !ok {
			return nil, false
		}
		s, ok := std(c.Numbers)
		if !ok {
			return nil, false
		}
		if m == 0 {
			if zeroMean == RSDZero {
				return 0.0, true
			}
			return nil, false
		}
		return s / math.Abs(m), true
	}
}

func uniqueTexts(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func textUnique(c Column) (any, bool) {
	return len(uniqueTexts(c.Texts)), true
}

// textConcat joins distinct values in order of first appearance.
func textConcat(c Column) (any, bool) {
	return strings.Join(uniqueTexts(c.Texts), "|"), true
}

func timeMin(c Column) (any, bool) {
	if len(c.Times) == 0 {
		return nil, false
	}
	m := c.Times[0]
	for _, t := range c.Times[1:] {
		if t.Before(m) {
			m = t
		}
	}
	return m, true
}

func timeMax(c Column) (any, bool) {
	if len(c.Times) == 0 {
		return nil, false
	}
	m := c.Times[0]
	for _, t := range c.Times[1:] {
		if t.After(m) {
			m = t
		}
	}
	return m, true
}

func boolAny(c Column) (any, bool) {
	for _, b := range c.Bools {
		if b {
			return true, true
		}
	}
	return false, true
}

func boolAll(c Column) (any, bool) {
	for _, b := range c.Bools {
		if !b {
			return false, true
		}
	}
	return true, true
}

func boolSum(c Column) (any, bool) {
	n := 0
	for _, b := range c.Bools {
		if b {
			n++
		}
	}
	return n, true
}
