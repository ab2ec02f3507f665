package common

import (
	"regexp"
	"strings"
)

var (
	slugDropRX   = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaceRX  = regexp.MustCompile(`\s+`)
	slugHyphenRX = regexp.MustCompile(`-+`)
)

// Slugify normalizes a title into a URL-safe identifier: lowercase, strip
// everything outside [a-z0-9 -], whitespace runs become a single hyphen and
// hyphen runs collapse into one. Leading and trailing hyphens are trimmed.
// The result may be empty when the title has no usable characters; callers
// must treat that as invalid input.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugDropRX.ReplaceAllString(slug, "")
	slug = slugSpaceRX.ReplaceAllString(slug, "-")
	slug = slugHyphenRX.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
