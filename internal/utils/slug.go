package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace   = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify lowercases text, drops everything but ASCII letters, digits,
// spaces and dashes, and joins words with single dashes.
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	return slugDashes.ReplaceAllString(s, "-")
}
