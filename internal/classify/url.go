package classify

import (
	"net/url"
	"strings"
)

// Domain extracts the lowercase host from a raw URL, stripping any "www."
// prefix. Bare hosts without a scheme ("github.com/foo") are handled too.
// Returns "" when nothing host-like can be recovered; callers fall through
// to the next rule instead of failing.
func Domain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		// Retry as a scheme-less URL.
		parsed, err = url.Parse("https://" + raw)
		if err != nil {
			return ""
		}
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// normalizeURL reduces a raw URL to "host/path" form for pattern matching,
// without scheme, "www." or query string.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	for _, prefix := range []string{"https://", "http://"} {
		raw = strings.TrimPrefix(raw, prefix)
	}
	raw = strings.TrimPrefix(raw, "www.")
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSuffix(raw, "/")
}

// patternMatches supports one leading or trailing wildcard. A pattern with
// no wildcard must equal the normalized URL exactly.
func patternMatches(pattern, target string) bool {
	pattern = normalizeURL(pattern)
	if pattern == "" {
		return false
	}
	switch {
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(target, strings.TrimPrefix(pattern, "*"))
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(target, strings.TrimSuffix(pattern, "*"))
	default:
		return target == pattern
	}
}
