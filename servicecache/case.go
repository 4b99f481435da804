package servicecache

import (
	"strings"
	"unicode"
)

// toSnake converts a service name to snake_case for use as a cache key
// namespace. Punctuation and spaces are collapsed to underscores; leaving
// them in would break the prefix-based invalidation strategy.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 && !lastUnderscore {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
