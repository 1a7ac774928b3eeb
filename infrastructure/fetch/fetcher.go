// Package fetch retrieves web pages and reduces them to plain text for
// chunking and embedding.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// userAgent identifies the fetcher as a regular browser. Some sites serve
// stripped or blocked responses to unknown clients.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// maxBodyBytes bounds the response body read. Pages larger than this are
// truncated rather than buffered without limit.
const maxBodyBytes = 10 << 20

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET against the URL and returns the response body.
// Non-2xx statuses are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return body, nil
}

// Page fetches the URL and cleans the response into title and text.
func (f *Fetcher) Page(ctx context.Context, url string) (Page, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return Page{}, err
	}
	return Clean(body, url)
}
