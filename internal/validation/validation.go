package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DevicePattern defines the accepted device id format for ids not issued by
// this service: alphanumeric, hyphens, underscores.
var DevicePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)

// LinkKeyPattern matches a feed key: a transaction hash or a percent-encoded URL.
var LinkKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9%_.!~*'()-]+$`)

// ValidateDeviceID checks a client-supplied device id.
func ValidateDeviceID(id string) bool {
	if len(id) == 36 {
		_, err := uuid.Parse(id)
		return err == nil
	}
	return DevicePattern.MatchString(id)
}

// ValidateLinkKey checks a feed key taken from a request path.
func ValidateLinkKey(key string) bool {
	if key == "" || len(key) > 2048 {
		return false
	}
	return LinkKeyPattern.MatchString(key)
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
