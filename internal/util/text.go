package util

import "strings"

// SanitizePostgresText drops invalid UTF-8 and NUL bytes, neither of which a
// Postgres TEXT column accepts.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// SanitizePostgresAttrs applies SanitizePostgresText to every key and value.
// A nil map yields an empty one so it encodes as a JSON object.
func SanitizePostgresAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[SanitizePostgresText(k)] = SanitizePostgresText(v)
	}
	return out
}
