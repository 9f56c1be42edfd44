// Package web detects URLs in chat messages and turns the pages behind
// them into plain text suitable for model prompts.
package web

import "regexp"

var urlPattern = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// HasURL reports whether text contains at least one http(s) URL.
func HasURL(text string) bool {
	return urlPattern.MatchString(text)
}

// ExtractURLs returns every URL found in text, in order of appearance.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// FirstURL returns the first URL in text, or "" when none is present.
func FirstURL(text string) string {
	return urlPattern.FindString(text)
}
