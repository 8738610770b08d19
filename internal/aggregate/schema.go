package aggregate

import (
	"fmt"
	"slices"
)

// SemanticType is the kind of statistics a field supports.
type SemanticType int

const (
	Numeric SemanticType = iota + 1
	Text
	Timestamp
	Boolean
)

func (t SemanticType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Timestamp:
		return "timestamp"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("SemanticType(%d)", int(t))
	}
}

// Schema maps each field name to its semantic type.
type Schema map[string]SemanticType

// InferSchema inspects every non-nil value of every record. A field whose
// values disagree on type is treated as text. Fields that are nil in every
// record have no type and are left out.
func InferSchema(records []Record) Schema {
	schema := make(Schema)
	for _, rec := range records {
		for k, v := range rec {
			t, ok := typeOf(v)
			if !ok {
				continue
			}
			prev, seen := schema[k]
			switch {
			case !seen:
				schema[k] = t
			case prev != t:
				schema[k] = Text
			}
		}
	}
	return schema
}

// Fields returns the field names of type t in sorted order.
func (s Schema) Fields(t SemanticType) []string {
	var out []string
	for k, ft := range s {
		if ft == t {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
