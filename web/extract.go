package web

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxExtractLen bounds extracted page text, in runes. Long articles are
// cut here before they reach a model prompt.
const MaxExtractLen = 4096

// ExtractText pulls readable text out of an HTML document: the title,
// headings, and paragraphs, one per line. Documents without any of those
// fall back to the whole document's text.
func ExtractText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var lines []string
	doc.Find("title, h1, h2, h3, p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			lines = append(lines, text)
		}
	})

	text := strings.Join(lines, "\n")
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	return Truncate(text, MaxExtractLen), nil
}

// ExtractTitle returns the document's <title> text, trimmed.
func ExtractTitle(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// Truncate cuts s to at most limit runes, never splitting a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
