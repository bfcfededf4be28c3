package util

import "strings"

func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// NormalizeText prepares raw extracted document text for chunking.
// It strips NUL bytes and invalid UTF-8, then collapses all runs of
// whitespace (including newlines and tabs) into single spaces.
func NormalizeText(value string) string {
	sanitized := SanitizePostgresText(value)
	return strings.Join(strings.Fields(sanitized), " ")
}
