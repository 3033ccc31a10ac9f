package http

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL joins path onto baseURL, keeping any path the base already carries,
// and replaces the query with query when it is non-empty.
func BuildURL(baseURL, path string, query map[string]string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")

	if len(query) == 0 {
		return u.String(), nil
	}
	values := make(url.Values, len(query))
	for k, v := range query {
		values.Set(k, v)
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}
