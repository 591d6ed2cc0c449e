package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/okian/jobscout/pkg/logger"
)

const defaultBrowserTimeout = 45 * time.Second

// BrowserFetcher renders pages in headless Chrome so script-built listings
// become visible.
type BrowserFetcher struct {
	timeout   time.Duration
	userAgent string
	waitFor   string
	execPath  string
}

// NewBrowserFetcher creates a BrowserFetcher.
func NewBrowserFetcher(opts ...BrowserOption) *BrowserFetcher {
	b := &BrowserFetcher{
		timeout:   defaultBrowserTimeout,
		userAgent: defaultUserAgent,
		waitFor:   "body",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fetch navigates to rawURL and returns the rendered document.
func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if err := checkURL(rawURL); err != nil {
		return Page{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(b.userAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	started := time.Now()
	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady(b.waitFor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, fmt.Errorf("render %s: %w", rawURL, ctx.Err())
		}
		return Page{}, fmt.Errorf("%w: render %s: %w", ErrBrowserUnavailable, rawURL, err)
	}

	logger.Get().Debug(ctx, "rendered page",
		logger.String("url", rawURL),
		logger.Int("bytes", len(html)),
		logger.Duration("elapsed", time.Since(started)),
	)
	return Page{URL: rawURL, Status: http.StatusOK, Body: []byte(html)}, nil
}
