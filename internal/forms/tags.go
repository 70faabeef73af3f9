package forms

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTags      = 10
	MaxTagLength = 30
)

// ParseTags splits a comma separated tag list into normalised tags: trimmed,
// lower-cased, inner whitespace collapsed to "-", duplicates dropped while
// keeping first-seen order.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := NormalizeTag(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// NormalizeTag canonicalises a single tag.
func NormalizeTag(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, "-")
}

// CheckTags returns a user-facing message when tags exceed the limits, or "".
func CheckTags(tags []string) string {
	if len(tags) > MaxTags {
		return fmt.Sprintf("No more than %d tags", MaxTags)
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Sprintf("Tags must be at most %d characters", MaxTagLength)
		}
	}
	return ""
}
