package model

import (
	"fmt"

	"github.com/cleared-dev/clearbooks/internal/coerce"
	"github.com/cleared-dev/clearbooks/internal/savon"
)

// records reads an optional sequence of mappings stored under key. An
// absent key yields no records.
func records(data map[string]any, key string) ([]map[string]any, error) {
	v := savon.Value(data, key)
	switch seq := v.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return seq, nil
	case []savon.Hash:
		out := make([]map[string]any, len(seq))
		for i, h := range seq {
			out[i] = h
		}
		return out, nil
	case []any:
		out := make([]map[string]any, len(seq))
		for i, item := range seq {
			rec, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: %w %T, want mapping", key, i, coerce.ErrUnsupportedType, item)
			}
			out[i] = rec
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w %T, want sequence", key, coerce.ErrUnsupportedType, v)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case savon.Hash:
		return m, true
	default:
		return nil, false
	}
}
