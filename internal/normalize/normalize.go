package normalize

import (
	"os"
	"strings"
	"unicode"
)

// Separator is the path separator preserved as a distinguished token.
const Separator = os.PathSeparator

// Text lowercases the input and collapses every run of non-alphanumeric
// characters into a single space, except that path separators survive as
// single separator characters and apostrophes vanish without leaving a
// space. Leading and trailing spaces are trimmed. Applying Text to its own
// output returns the input unchanged.
func Text(path string) string {
	lowered := strings.ToLower(path)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r == rune(Separator):
			// A separator absorbs any pending space or duplicate separator.
			trimTrailing(&b)
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'':
			// Dropped entirely so contractions stay one word.
		default:
			s := b.String()
			if s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, string(Separator)) {
				b.WriteByte(' ')
			}
		}
	}

	out := b.String()
	return strings.TrimSuffix(out, " ")
}

func trimTrailing(b *strings.Builder) {
	s := b.String()
	if strings.HasSuffix(s, " ") || strings.HasSuffix(s, string(Separator)) {
		trimmed := s[:len(s)-1]
		b.Reset()
		b.WriteString(trimmed)
	}
}
