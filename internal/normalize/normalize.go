package normalize

import (
	"strconv"
	"strings"
)

// Normalize lowercases, collapses whitespace runs to a single space,
// strips everything outside [0-9a-z ] and trims. Idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
			space = true
		case (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z'):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			// stripped; does not act as a separator
		}
	}
	return b.String()
}

// RatingToFloat parses a rating from a direct numeric string or, failing
// that, from the first whitespace-delimited token ("4.5 stars" -> 4.5).
// Unparseable ratings report ok=false rather than an error.
func RatingToFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
		return f, true
	}
	return 0, false
}
