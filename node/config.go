package node

import (
	"fmt"
	"strconv"
)

// Helpers for reading loosely-typed node config maps. Values arrive from
// JSON, so numbers are float64 and lists are []any; designer form posts may
// also deliver numerics as strings.

func cfgString(config map[string]any, key string, def string) string {
	v, ok := config[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func cfgBool(config map[string]any, key string, def bool) bool {
	v, ok := config[key]
	if !ok || v == nil {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func cfgFloat(config map[string]any, key string) (float64, bool) {
	v, ok := config[key]
	if !ok || v == nil {
		return 0, false
	}
	return anyToFloat(v)
}

func cfgInt(config map[string]any, key string) (int, bool) {
	f, ok := cfgFloat(config, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func cfgStringSlice(config map[string]any, key string) []string {
	v, ok := config[key]
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}

func cfgMap(config map[string]any, key string) map[string]any {
	v, ok := config[key]
	if !ok || v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func anyToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
