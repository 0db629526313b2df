package media

import (
	"net/url"
	"strings"
)

// Resolver turns references into keys and keys into public URLs for one
// bucket deployment.
type Resolver struct {
	// MediaBaseURL, when set, prefixes every derived URL.
	MediaBaseURL string
	// Endpoint is the S3-compatible endpoint; empty means AWS.
	Endpoint string
	Bucket   string
	Region   string
}

// Normalize is NormalizeKey that also understands URLs built on the
// configured media base, including bases with a path component.
func (r Resolver) Normalize(s string) string {
	s = strings.TrimSpace(s)
	if base := strings.TrimRight(r.MediaBaseURL, "/"); base != "" && strings.HasPrefix(s, base+"/") {
		s = s[len(base)+1:]
		if unescaped, err := url.PathUnescape(s); err == nil {
			s = unescaped
		}
	}
	return NormalizeKey(s)
}

// URL derives the public URL of a reference, escaping each key segment.
// Empty references give "".
func (r Resolver) URL(value string) string {
	key := r.Normalize(value)
	if key == "" {
		return ""
	}
	if base := strings.TrimRight(r.MediaBaseURL, "/"); base != "" {
		return base + "/" + escapePath(key)
	}
	return "https://" + r.Bucket + "." + r.storageHost() + "/" + escapePath(key)
}

func escapePath(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func (r Resolver) storageHost() string {
	if r.Endpoint != "" {
		endpoint := r.Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return "s3." + r.Region + ".amazonaws.com"
}
