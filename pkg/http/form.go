package http

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// EncodeForm flattens a nested body into form values using bracket notation,
// so {"attributes": {"city": "Berlin"}} becomes attributes[city]=Berlin.
// Nil values are skipped; booleans encode as 1 and 0.
func EncodeForm(body map[string]interface{}) url.Values {
	form := url.Values{}
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encodeValue(form, k, body[k])
	}
	return form
}

func encodeValue(form url.Values, key string, value interface{}) {
	switch v := value.(type) {
	case nil:
		return
	case map[string]interface{}:
		for k, val := range v {
			encodeValue(form, key+"["+k+"]", val)
		}
	case map[string]string:
		for k, val := range v {
			form.Add(key+"["+k+"]", val)
		}
	case []interface{}:
		for i, val := range v {
			encodeValue(form, key+"["+strconv.Itoa(i)+"]", val)
		}
	case []string:
		for i, val := range v {
			form.Add(key+"["+strconv.Itoa(i)+"]", val)
		}
	case bool:
		if v {
			form.Add(key, "1")
		} else {
			form.Add(key, "0")
		}
	case string:
		form.Add(key, v)
	default:
		form.Add(key, fmt.Sprint(v))
	}
}
