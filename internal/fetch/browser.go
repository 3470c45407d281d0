package fetch

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the extracted-text length below which a page is treated
// as client-rendered. AI crawlers mostly read the HTTP body, so such pages are
// rendered only to score what a human would see.
const MinContentLength = 500

// Browser rendering defaults.
const (
	DefaultBrowserTimeout = 30 * time.Second
	DefaultSettleDelay    = 2 * time.Second
)

// BrowserOptions configures a headless render.
type BrowserOptions struct {
	Timeout time.Duration
	// SettleDelay waits after DOM ready for client-side rendering.
	SettleDelay time.Duration
	UserAgent   string
	Logger      *slog.Logger
}

var appShell = regexp.MustCompile(`(?i)<div[^>]+id=["'](root|app|__next|__nuxt)["'][^>]*>\s*</div>`)

// ShouldUseBrowser reports whether extracted text is short enough that the
// page is probably a JavaScript app shell.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// IsAppShell reports whether html has an empty SPA mount point.
func IsAppShell(html string) bool {
	return appShell.MatchString(html)
}

// WithBrowser renders url in headless Chrome and returns the resulting HTML.
// Chrome or Chromium must be installed.
func WithBrowser(ctx context.Context, url string, opts *BrowserOptions) (string, error) {
	o := BrowserOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultBrowserTimeout
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(o.UserAgent),
	)...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	runCtx, cancelRun := context.WithTimeout(tabCtx, o.Timeout)
	defer cancelRun()

	started := time.Now()
	var html string
	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(o.SettleDelay),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return "", &Error{URL: url, Message: "headless render failed", Retryable: true, Cause: err}
	}

	o.Logger.Debug("rendered page", "url", url, "bytes", len(html), "took", time.Since(started))
	return html, nil
}

