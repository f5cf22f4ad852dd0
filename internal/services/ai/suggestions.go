package ai

import (
	"regexp"
	"strings"
)

// enumPrefix matches leading list markers models tend to emit despite the
// prompt asking for plain lines: "1.", "2)", "-", "*".
var enumPrefix = regexp.MustCompile(`^(\d+[.)]|[-*])\s*`)

// ParseSuggestions splits a raw completion into individual task descriptions.
// Each non-blank line becomes one suggestion with any enumeration marker
// stripped. Lines that are nothing but a marker are dropped.
func ParseSuggestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		trimmed = strings.TrimSpace(enumPrefix.ReplaceAllString(trimmed, ""))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
