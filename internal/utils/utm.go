package utils

import (
	"net/url"
	"strings"
	"time"
)

// ParseUTMParams extracts the utm_* parameters from a URL. Malformed URLs and
// URLs without UTM parameters yield an empty map.
func ParseUTMParams(rawURL string) map[string]string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return map[string]string{}
	}
	return ExtractUTM(parsed.Query())
}

func ExtractUTM(values url.Values) map[string]string {
	utm := make(map[string]string)
	for _, name := range UTMParamNames {
		if v := strings.TrimSpace(values.Get(name)); v != "" {
			utm[name] = v
		}
	}
	return utm
}

// MergeUTM overlays visit-level parameters on the link's stored UTM bag.
func MergeUTM(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func IsValidURL(rawURL string) bool {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// ParseTimeParam accepts RFC3339 timestamps or plain dates (2006-01-02).
func ParseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
