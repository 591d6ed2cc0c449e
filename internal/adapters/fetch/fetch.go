// Package fetch retrieves raw pages for source adapters.
package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/jobscout/pkg/logger"
)

// Default fetch configuration constants.
const (
	defaultTimeout   = 20 * time.Second
	defaultMaxBody   = 8 << 20
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	acceptEncoding   = "gzip"
)

// Page is a fetched document.
type Page struct {
	URL    string
	Status int
	Body   []byte
}

// Fetcher retrieves the document at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// HTTPFetcher fetches over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	headers   http.Header
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		maxBody:   defaultMaxBody,
		headers:   http.Header{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a GET and returns the decoded body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if err := checkURL(rawURL); err != nil {
		return Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	for k, vs := range f.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/json,application/xml;q=0.9,*/*;q=0.8")
	}

	started := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return Page{}, fmt.Errorf("gzip %s: %w", rawURL, err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBody))
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", rawURL, err)
	}

	logger.Get().Debug(ctx, "fetched page",
		logger.String("url", rawURL),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(data)),
		logger.Duration("elapsed", time.Since(started)),
	)

	page := Page{URL: rawURL, Status: resp.StatusCode, Body: data}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	return page, nil
}

func checkURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
