package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/desk-monitor/internal/state"
)

// extract decodes an inbound payload into a display value. With no
// path, the trimmed payload parses as a number or falls back to raw
// text. With a dotted path the payload must be JSON; the path walks
// objects by key and arrays by integer index, and the leaf must be a
// scalar.
func extract(payload []byte, path string) (state.Value, error) {
	if path == "" {
		return state.Parse(strings.TrimSpace(string(payload))), nil
	}

	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return state.Value{}, fmt.Errorf("parse json: %w", err)
	}

	cur := data
	for _, key := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return state.Value{}, fmt.Errorf("path %q: key %q not found", path, key)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil {
				return state.Value{}, fmt.Errorf("path %q: %q indexes an array", path, key)
			}
			if i < 0 || i >= len(node) {
				return state.Value{}, fmt.Errorf("path %q: index %d out of range", path, i)
			}
			cur = node[i]
		default:
			return state.Value{}, fmt.Errorf("path %q: %q has no children", path, key)
		}
	}

	switch leaf := cur.(type) {
	case float64:
		return state.Float(leaf), nil
	case string:
		return state.Parse(leaf), nil
	case bool:
		return state.Value{Text: strconv.FormatBool(leaf)}, nil
	default:
		return state.Value{}, fmt.Errorf("path %q: value is not a scalar", path)
	}
}
