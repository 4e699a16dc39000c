package export

import (
	"strings"
	"time"
	"unicode"
)

// TimestampLayout is the timestamp embedded in export filenames.
const TimestampLayout = "20060102_150405"

// SanitizeName trims s, collapses whitespace runs to a single underscore and
// drops everything that is not an ASCII letter, digit or underscore.
func SanitizeName(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Filename builds <dataset>[_<client>]_<YYYYMMDD_HHMMSS>.<ext>.
func Filename(dataset, client string, format Format, now time.Time) string {
	parts := []string{dataset}
	if c := SanitizeName(client); c != "" {
		parts = append(parts, c)
	}
	parts = append(parts, now.UTC().Format(TimestampLayout))
	return strings.Join(parts, "_") + "." + format.Extension()
}
