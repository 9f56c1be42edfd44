package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrSearch wraps transport and parse failures of the search backend.
var ErrSearch = errors.New("search request failed")

const (
	duckDuckGoURL = "https://html.duckduckgo.com/html/"

	// Japanese region. The bot's audience is Japanese-speaking and the
	// fallback phrasing around results assumes Japanese pages.
	duckDuckGoRegion = "jp-jp"

	searchTimeout = 20 * time.Second
)

// DuckDuckGo queries the DuckDuckGo HTML endpoint and scrapes the result
// list. No API key required.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
}

// NewDuckDuckGo creates a searcher against the public endpoint.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		client:  &http.Client{Timeout: searchTimeout},
		baseURL: duckDuckGoURL,
	}
}

// Search implements Searcher. maxResults values outside (0,
// DefaultMaxResults] are clamped to DefaultMaxResults.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 || maxResults > DefaultMaxResults {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("kl", duckDuckGoRegion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; aibot/1.0)")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		body := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" && href == "" {
			return true
		}
		results = append(results, Result{
			Title: title,
			Body:  body,
			URL:   cleanResultURL(href),
		})
		return len(results) < maxResults
	})

	return results, nil
}

// cleanResultURL unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=<target>)
// back into the target URL. Plain links pass through unchanged.
func cleanResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
