package aggregate

import (
	"encoding/json"
	"maps"
	"reflect"
	"time"
)

// Record is one flat row: nested keys are joined with ".".
type Record map[string]any

// Flatten converts a nested map into a Record. Slices are dropped; nested
// maps contribute dotted keys.
func Flatten(m map[string]any) Record {
	out := make(Record, len(m))
	flattenInto(out, "", m)
	return out
}

func flattenInto(out Record, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch nested := v.(type) {
		case map[string]any:
			flattenInto(out, key, nested)
		case Record:
			flattenInto(out, key, nested)
		default:
			if v == nil {
				continue
			}
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				continue
			}
			out[key] = v
		}
	}
}

// With returns a copy of r with the given keys set. Nil values are skipped.
func (r Record) With(kv map[string]any) Record {
	out := maps.Clone(r)
	if out == nil {
		out = make(Record, len(kv))
	}
	for k, v := range kv {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

var timeType = reflect.TypeFor[time.Time]()

// typeOf classifies a single value.
func typeOf(v any) (SemanticType, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == timeType {
		return Timestamp, true
	}
	if _, ok := v.(json.Number); ok {
		return Numeric, true
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Numeric, true
	case reflect.String:
		return Text, true
	case reflect.Bool:
		return Boolean, true
	default:
		return 0, false
	}
}
