// Package jsonval copies decoded JSON values.
package jsonval

import "encoding/json"

// Copy returns a deep copy of v, a value as produced by json.Unmarshal into
// an any (maps, slices, scalars) or raw JSON bytes. Other composite values
// are copied through a JSON round trip and come back in decoded form.
func Copy(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, json.Number, int, int64:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Copy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Copy(item)
		}
		return out
	case json.RawMessage:
		return append(json.RawMessage(nil), val...)
	case []byte:
		return append([]byte(nil), val...)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil
		}
		return out
	}
}
