package feed

import (
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
)

// LinkKey derives the deduplication key for a shared link. A transaction hash
// wins when present; otherwise the link is canonicalized and percent-encoded.
// An empty result means the link carries nothing to identify it by.
func LinkKey(link, hash string) string {
	if hash = strings.TrimSpace(hash); hash != "" {
		return strings.ToLower(hash)
	}
	normalized := NormalizeLink(link)
	if normalized == "" {
		return ""
	}
	return encodeURIComponent(normalized)
}

// NormalizeLink returns the lowercase canonical form of an absolute URL, or
// the lowercase trimmed input when it does not parse as one.
func NormalizeLink(link string) string {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := canonicalURL(trimmed); ok {
		return strings.ToLower(canonical)
	}
	return strings.ToLower(trimmed)
}

// canonicalURL serializes raw under WHATWG URL rules so keys match the ones
// browsers derived from the same link.
func canonicalURL(raw string) (string, bool) {
	u, err := whatwg.Parse(raw)
	if err != nil {
		return "", false
	}
	return u.Href(false), true
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent escapes every byte outside the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) so keys match the ones browsers produce.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
