package security

import (
	"strings"
	"unicode/utf8"
)

const redacted = "***"

var sensitiveSubstrings = []string{
	"token",
	"password",
	"passwd",
	"passphrase",
	"secret",
	"authorization",
	"api_key",
	"apikey",
	"access_key",
	"private_key",
	"credential",
	"cookie",
	"bearer",
	"jwt",
}

// RedactArguments returns a copy of values for logging: sensitive keys are
// masked and long strings are shortened to maxLen runes.
func RedactArguments(values map[string]any, maxLen int) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		if isSensitiveKey(key) {
			out[key] = redacted
			continue
		}
		if s, ok := value.(string); ok {
			out[key] = Preview(s, maxLen)
			continue
		}
		out[key] = value
	}
	return out
}

// Preview shortens s to at most maxLen runes, marking the cut with an ellipsis.
// maxLen <= 0 disables shortening.
func Preview(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "…"
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveSubstrings {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
