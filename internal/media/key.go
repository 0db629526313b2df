// Package media resolves media references stored on content records to
// storage keys and URLs, tracks which records use which file, and guards
// the media library operations (list, upload, delete, noindex).
package media

import (
	"net/url"
	"strings"
)

// ServingSegment is the path under which the API serves stored files.
// Legacy records often hold full URLs through it.
const ServingSegment = "/api/media/"

// NormalizeKey reduces any stored media reference (bare key, relative or
// absolute URL, URL through ServingSegment) to its canonical storage key:
// a relative path without leading slash, host, query or fragment.
// It never fails; unusable input yields "" or the trailing file name.
func NormalizeKey(s string) string {
	// Repeat until stable so nested URL shapes collapse fully. Every
	// change shortens the string, so this terminates.
	for {
		next := normalizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if i := strings.LastIndex(s, ServingSegment); i >= 0 {
		s = s[i+len(ServingSegment):]
	} else if rel := strings.TrimPrefix(ServingSegment, "/"); strings.HasPrefix(s, rel) {
		s = s[len(rel):]
	}
	s = strings.TrimLeft(s, "/")

	if hasHTTPScheme(s) {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Path
		} else {
			s = afterLastSlash(s)
		}
	}

	s = strings.TrimLeft(s, "/")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func afterLastSlash(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
