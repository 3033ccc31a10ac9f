package feeds

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Lookup reads a value from submitted form data. A key matching path exactly
// wins; otherwise path is walked through nested maps as dot-separated segments.
func Lookup(data map[string]interface{}, path string) (interface{}, bool) {
	if path == "" || data == nil {
		return nil, false
	}
	if v, ok := data[path]; ok {
		return v, true
	}

	var current interface{} = data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			v, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = v
		case []interface{}:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// Stringify renders a submitted value the way it is sent to remote APIs.
// Lists are joined with ", ".
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(t))
		for _, k := range keys {
			if s := Stringify(t[k]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(t)
	}
}
