package forms

import (
	"crypto/rand"
	"regexp"
	"strings"
)

const (
	slugMaxBase     = 50
	slugSuffixLen   = 4
	slugRetrySuffix = 6
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
	slugValid    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Slugify converts a form title into a URL-safe slug with a random
// suffix, e.g. "Calculus I Diagnostic" -> "calculus-i-diagnostic-x7k2".
// The suffix keeps two forms with the same title addressable.
func Slugify(title string, suffixLen int) string {
	slug := strings.ToLower(title)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > slugMaxBase {
		slug = strings.TrimRight(slug[:slugMaxBase], "-")
	}

	suffix := randomSuffix(suffixLen)
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}

// IsValidSlug reports whether a slug is lowercase alphanumeric groups
// joined by single hyphens.
func IsValidSlug(slug string) bool {
	return slugValid.MatchString(slug)
}

func randomSuffix(n int) string {
	if n <= 0 {
		n = slugSuffixLen
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back
		// to a fixed suffix rather than panicking in a request path.
		return strings.Repeat("x", n)
	}
	for i := range buf {
		buf[i] = slugAlphabet[int(buf[i])%len(slugAlphabet)]
	}
	return string(buf)
}
