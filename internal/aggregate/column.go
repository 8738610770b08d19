package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Column holds the non-null values of one field, decoded for its type.
// NaN numbers count as null.
type Column struct {
	Name    string
	Type    SemanticType
	Numbers []float64
	Texts   []string
	Times   []time.Time
	Bools   []bool
}

// Len returns the number of non-null values.
func (c Column) Len() int {
	switch c.Type {
	case Numeric:
		return len(c.Numbers)
	case Text:
		return len(c.Texts)
	case Timestamp:
		return len(c.Times)
	case Boolean:
		return len(c.Bools)
	default:
		return 0
	}
}

func buildColumn(name string, t SemanticType, records []Record) Column {
	col := Column{Name: name, Type: t}
	for _, rec := range records {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		switch t {
		case Numeric:
			if f, ok := toFloat(v); ok && !math.IsNaN(f) {
				col.Numbers = append(col.Numbers, f)
			}
		case Text:
			col.Texts = append(col.Texts, toText(v))
		case Timestamp:
			if tv, ok := v.(time.Time); ok {
				col.Times = append(col.Times, tv)
			}
		case Boolean:
			if b, ok := v.(bool); ok {
				col.Bools = append(col.Bools, b)
			}
		}
	}
	return col
}

func toFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func toText(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprint(v)
	}
}
