package vendors

import (
	"strconv"
	"strings"
)

// Field-alias helpers for JSON feeds. Vendor payloads rename fields between
// API revisions, so extraction is an ordered list of attempts: the first key
// that yields a usable value wins.

func FirstString(item map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(t), true
		}
	}
	return "", false
}

// FirstFloat tolerates numbers encoded as strings, including locale variants
// with a comma decimal separator.
func FirstFloat(item map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := AsFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func FirstBool(item map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || v == nil {
			continue
		}
		if b, ok := v.(bool); ok {
			return b, true
		}
	}
	return false, false
}

func FirstMap(item map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if m, ok := item[k].(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

func FirstSlice(item map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if s, ok := item[k].([]any); ok {
			return s, true
		}
	}
	return nil, false
}

func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
