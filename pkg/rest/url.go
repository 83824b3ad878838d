package rest

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL resolves path against base and appends segments joined by "/".
// No trailing slash is added; callers append one where the resource expects it.
func BuildURL(base, path string, segments ...string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	resolved := baseURL.ResolveReference(ref).String()
	if len(segments) == 0 {
		return resolved, nil
	}

	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return strings.TrimRight(resolved, "/") + "/" + strings.Join(escaped, "/"), nil
}

// splitURL separates the query of rawURL from the rest of it
func splitURL(rawURL string) (string, url.Values, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	query := u.Query()
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String(), query, nil
}
