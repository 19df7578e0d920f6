package util

import "strings"

// NormalizeKey lowercases and trims a string for use as a consistent lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitList splits a comma-separated flag value into normalized keys,
// dropping empty elements. "Price, TVL," becomes ["price", "tvl"].
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if key := NormalizeKey(p); key != "" {
			out = append(out, key)
		}
	}
	return out
}
