package utils

import "strings"

// NormalizeDomain reduces an allowlist domain pattern to a bare lowercase
// host: scheme, "www." prefix, path and port are stripped so that
// "https://www.Example.com/page" and "example.com" compare equal.
func NormalizeDomain(d string) string {
	d = strings.TrimSpace(strings.ToLower(d))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	return d
}
