package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	UserAgent = "WikiRaceBot/1.0 (+github.com/pfrederiksen/wikirace-events)"
	Timeout   = 35 * time.Second

	// DefaultRequestInterval is the minimum spacing between two outgoing requests
	DefaultRequestInterval = 500 * time.Millisecond

	maxBodyBytes = 10 << 20
)

// Fetcher performs the HTTP GETs for every adapter. There are no retries: a failed request
// is an error for the caller to handle.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewFetcher creates a Fetcher that waits at least interval between requests.
// A zero interval disables pacing.
func NewFetcher(interval time.Duration) *Fetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: UserAgent,
	}
}

// Get fetches rawURL with params merged into its query and returns the body
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values, accept string) ([]byte, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if len(params) > 0 {
		q := target.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from %s: %d", target.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into out
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	body, err := f.Get(ctx, rawURL, params, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}
	return nil
}

// GetDocument fetches rawURL and parses it as HTML
func (f *Fetcher) GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, rawURL, nil, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
