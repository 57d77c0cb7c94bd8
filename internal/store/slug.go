package store

import "strings"

// Slugify derives a URL slug from a category name: lowercase, strip
// everything that is not alphanumeric, space or hyphen, then collapse
// whitespace runs into single hyphens.
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}

	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' '
	})
	slug := strings.Join(fields, "-")
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return slug
}
