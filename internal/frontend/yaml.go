package frontend

import (
	"fmt"

	"github.com/aretw0/launchtree/internal/dto"
	"gopkg.in/yaml.v3"
)

// yamlToMap decodes a YAML launch file into the generic launch map.
// The document must have a top-level "launch" list of single-key entity maps.
func yamlToMap(path string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Msg: "invalid YAML", Err: err}
	}
	raw, ok := doc["launch"]
	if !ok {
		return nil, &ParseError{Path: path, Msg: "missing top-level 'launch' key"}
	}
	list, ok := raw.([]any)
	if !ok && raw != nil {
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("'launch' must be a list, got %T", raw)}
	}
	return map[string]any{dto.ChildrenKey: normalizeValue(list)}, nil
}

// normalizeValue rewrites map keys to their underscore form, leaving parameter values alone.
// Nested entity lists move to dto.ChildrenKey.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			if k == "value" {
				out[k] = sub
				continue
			}
			if k == "children" {
				out[dto.ChildrenKey] = normalizeValue(sub)
				continue
			}
			out[normalizeKey(k)] = normalizeValue(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalizeValue(sub)
		}
		return out
	default:
		return v
	}
}
