package fetch

import (
	"net/http"
	"time"
)

// HTTPOption applies a configuration option to the HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.headers.Add(key, value)
	}
}

// WithMaxBody caps how many body bytes are read.
func WithMaxBody(n int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// BrowserOption applies a configuration option to the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithBrowserTimeout bounds one render.
func WithBrowserTimeout(d time.Duration) BrowserOption {
	return func(b *BrowserFetcher) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithBrowserUserAgent sets the browser User-Agent.
func WithBrowserUserAgent(ua string) BrowserOption {
	return func(b *BrowserFetcher) {
		if ua != "" {
			b.userAgent = ua
		}
	}
}

// WithWaitSelector sets the CSS selector that must be ready before the page
// is captured.
func WithWaitSelector(sel string) BrowserOption {
	return func(b *BrowserFetcher) {
		if sel != "" {
			b.waitFor = sel
		}
	}
}

// WithExecPath points at a specific Chrome binary.
func WithExecPath(path string) BrowserOption {
	return func(b *BrowserFetcher) {
		b.execPath = path
	}
}
