package gyms

import (
	"regexp"
	"strings"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
	leadingDashes  = regexp.MustCompile(`^-+`)
	trailingDashes = regexp.MustCompile(`-+$`)
)

const (
	slugMinLen = 3
	slugMaxLen = 60
)

// Slugify derives a URL-safe slug from a gym name.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = leadingDashes.ReplaceAllString(slug, "")
	slug = trailingDashes.ReplaceAllString(slug, "")
	if len(slug) > slugMaxLen {
		slug = strings.TrimRight(slug[:slugMaxLen], "-")
	}
	return slug
}

// ValidSlug reports whether a slug is acceptable.
func ValidSlug(slug string) bool {
	if len(slug) < slugMinLen || len(slug) > slugMaxLen {
		return false
	}
	return slugPattern.MatchString(slug)
}
