package service

import (
	"regexp"
	"strings"
)

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugHyphens  = regexp.MustCompile(`-+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// GenerateSlug kebab-cases a title into a URL-safe identifier.
// Uniqueness is not handled here; see PostService.createWithUniqueSlug.
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// EstimateReadTime returns the reading time in minutes for the given body,
// assuming 200 words per minute, rounded up. Empty content reads in zero.
func EstimateReadTime(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	words := len(whitespaceRe.Split(trimmed, -1))
	return (words + 199) / 200
}
