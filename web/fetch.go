package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetch wraps any failure to retrieve a page: transport errors and
// non-2xx statuses alike. Callers treat it as "the page is unavailable"
// and degrade, never abort the reply.
var ErrFetch = errors.New("failed to fetch page")

const (
	defaultFetchTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a page is read. Extraction truncates
	// far below this anyway.
	maxBodyBytes = 2 << 20

	// A mobile user agent. Some sites serve the lighter mobile markup,
	// which extracts more cleanly.
	userAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 13_2_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1"
)

// Fetcher retrieves raw page bodies over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a bounded HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: defaultFetchTimeout}}
}

// Fetch retrieves the body at url. Any failure, including a non-2xx
// status, is reported as an ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return body, nil
}
