package source

import (
	"encoding/json"
	"strconv"
	"strings"
)

// pickStr returns the first non-empty string value among keys
func pickStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				s2 := strings.TrimSpace(s)
				if s2 != "" {
					return s2
				}
			}
		}
	}
	return ""
}

// pickNum returns the first numeric value among keys. Numeric strings are accepted.
func pickNum(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// pickID returns an identifier that may be encoded as a string or a number
func pickID(m map[string]any, keys ...string) string {
	if s := pickStr(m, keys...); s != "" {
		return s
	}
	if f, ok := pickNum(m, keys...); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// pickBool accepts JSON booleans as well as "T"/"true"/"1" style flags
func pickBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "t", "true", "1", "y", "yes":
				return true
			}
			return false
		}
	}
	return false
}

func pickMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// pickList returns the first array value among keys as a list of objects, skipping non-objects
func pickList(m map[string]any, keys ...string) []map[string]any {
	for _, k := range keys {
		raw, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}
