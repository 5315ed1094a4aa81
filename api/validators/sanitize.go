package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, folds runs of whitespace into one space, drops
// control characters and cuts the result to maxLen runes. maxLen <= 0 means
// no limit.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))

	runes, pendingSpace := 0, false
	for _, c := range input {
		if maxLen > 0 && runes >= maxLen {
			break
		}
		switch {
		case unicode.IsSpace(c):
			pendingSpace = b.Len() > 0
			continue
		case unicode.IsControl(c):
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			runes++
			pendingSpace = false
			if maxLen > 0 && runes >= maxLen {
				break
			}
		}
		b.WriteRune(c)
		runes++
	}
	return strings.TrimSpace(b.String())
}
