// Package aggregate computes per-field statistics over homogeneous records.
//
// Field types are inferred from the records themselves and the statistics
// for each type come from a Funcs table. Statistics that are undefined for a
// column (for example the mean of no values) are left out of the result.
package aggregate

import (
	"encoding/json"
	"time"
)

// ElementsCount is the key holding the number of aggregated records.
const ElementsCount = "elements_count"

// Stats maps a statistic name to its value.
type Stats map[string]any

// Aggregation is the result of Aggregate.
type Aggregation struct {
	ElementsCount int
	Fields        map[string]Stats
}

// Aggregate applies funcs to every field of records according to the
// inferred schema.
func Aggregate(records []Record, funcs Funcs) Aggregation {
	agg := Aggregation{ElementsCount: len(records), Fields: map[string]Stats{}}
	if len(records) == 0 {
		return agg
	}

	schema := InferSchema(records)
	for _, t := range []SemanticType{Numeric, Text, Timestamp, Boolean} {
		fns := funcs[t]
		if len(fns) == 0 {
			continue
		}
		for _, name := range schema.Fields(t) {
			col := buildColumn(name, t, records)
			stats := make(Stats, len(fns))
			for _, fn := range fns {
				if v, ok := fn.Apply(col); ok {
					stats[fn.Name] = v
				}
			}
			if len(stats) > 0 {
				agg.Fields[name] = stats
			}
		}
	}
	return agg
}

// Has reports whether the aggregation holds any statistic for field.
func (a Aggregation) Has(field string) bool {
	_, ok := a.Fields[field]
	return ok
}

// Float returns a numeric statistic.
func (a Aggregation) Float(field, stat string) (float64, bool) {
	v, ok := a.Fields[field][stat]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Time returns a timestamp statistic.
func (a Aggregation) Time(field, stat string) (time.Time, bool) {
	v, ok := a.Fields[field][stat].(time.Time)
	return v, ok
}

// MarshalJSON renders the aggregation as one flat object keyed by field name,
// plus elements_count.
func (a Aggregation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Fields)+1)
	for k, v := range a.Fields {
		out[k] = v
	}
	out[ElementsCount] = a.ElementsCount
	return json.Marshal(out)
}
