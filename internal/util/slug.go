package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 100

// Slugify lowercases s, strips accents and joins word runs with single
// hyphens: "Héllo, World!" becomes "hello-world".
func Slugify(s string) string {
	decomposed := norm.NFKD.String(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingDash := false

	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Cf, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return strings.Trim(slug, "-")
}

// IsSlug reports whether s is already in Slugify's output form.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
