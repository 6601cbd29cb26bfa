package utils

import "strings"

// NormalizeUsername strips a leading @ and surrounding whitespace
func NormalizeUsername(input string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "@"))
}

// ParseOptions splits a comma-separated option list, trimming each entry
// and dropping empty ones
func ParseOptions(input string) []string {
	parts := strings.Split(input, ",")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			options = append(options, p)
		}
	}
	return options
}

// DisplayName prefers the username, falling back to the numeric ID rendering
func DisplayName(username, fallback string) string {
	if username != "" {
		return username
	}
	return fallback
}
