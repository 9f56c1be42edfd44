// Package search finds web pages for questions the model cannot answer
// from its own knowledge.
package search

import (
	"context"
	"strings"
)

// DefaultMaxResults caps how many hits a single search returns.
const DefaultMaxResults = 10

// MaxFormattedLen bounds the formatted result block, in runes, before it
// is handed to a model prompt.
const MaxFormattedLen = 4096

// Result is one search hit.
type Result struct {
	Title string
	Body  string
	URL   string
}

// Searcher performs a web search.
//
// An empty result list with a nil error means the search ran and found
// nothing; callers phrase that as "no information", not as a failure.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// FormatResults renders results as labeled text blocks for a model
// prompt, truncated to MaxFormattedLen.
func FormatResults(results []Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString("タイトル: " + r.Title + "\n")
		b.WriteString("内容: " + r.Body + "\n")
		b.WriteString("URL: " + r.URL + "\n")
		b.WriteString("\n")
	}

	formatted := strings.TrimRight(b.String(), "\n")
	runes := []rune(formatted)
	if len(runes) > MaxFormattedLen {
		return string(runes[:MaxFormattedLen])
	}
	return formatted
}
