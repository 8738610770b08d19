package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// knownKeys caches the JSON keys declared by a struct type.
var knownKeys sync.Map // map[reflect.Type]map[string]struct{}

func jsonKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeys.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = struct{}{}
	}
	knownKeys.Store(t, keys)
	return keys
}

// decodeObject unmarshals data into the struct pointed to by typed and
// collects every key the struct does not declare into extra.
func decodeObject(data []byte, typed any, extra *map[string]any) error {
	if err := json.Unmarshal(data, typed); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	keys := jsonKeys(reflect.TypeOf(typed).Elem())
	for k := range keys {
		delete(all, k)
	}
	if len(all) > 0 {
		*extra = all
	} else {
		*extra = nil
	}
	return nil
}

// encodeObject marshals typed and merges extra into the result. Declared
// fields win over extra keys with the same name.
func encodeObject(typed any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(typed)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
