package slibuy

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"slibuy-scraper/config"
	"slibuy-scraper/utils"
)

// PageLoader renders a page and returns its HTML after client-side scripts
// have run.
type PageLoader interface {
	Load(ctx context.Context, pageURL string) (string, error)
}

// BrowserLoader renders pages in a shared headless Chrome, one tab per load.
type BrowserLoader struct {
	cfg    *config.Config
	logger *utils.Logger
	ready  *regexp.Regexp

	browserCtx context.Context
	cancel     func()
}

// NewBrowserLoader launches the browser. Close must be called to stop it.
func NewBrowserLoader(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*BrowserLoader, error) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Debug("[browser] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}
	// A persistent profile keeps the site session for the bids and won pages.
	if cfg.ChromeProfile != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.ChromeProfile))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	return &BrowserLoader{
		cfg:        cfg,
		logger:     logger,
		ready:      readinessRegexp(cfg.ReadyText),
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

// readinessRegexp matches text loosely: case-insensitive, any whitespace.
func readinessRegexp(text string) *regexp.Regexp {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `\s*`))
}

// Load opens pageURL in a new tab, waits for the readiness text for up to
// ReadyWait and returns the document HTML. The whole load is bounded by
// PageTimeout; on timeout the error is returned and no HTML.
func (b *BrowserLoader) Load(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.cfg.PageTimeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	if err := chromedp.Run(tabCtx, chromedp.Navigate(pageURL)); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	if !b.waitReady(tabCtx) {
		b.logger.Debug("[browser] Readiness text not seen on %s, parsing what is there", pageURL)
	}

	var out string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: read html %s: %w", pageURL, err)
	}
	return out, nil
}

// waitReady polls the page text until the readiness pattern appears or
// ReadyWait elapses. After a hit it waits one more poll interval so late
// rows can render.
func (b *BrowserLoader) waitReady(ctx context.Context) bool {
	deadline := time.Now().Add(b.cfg.ReadyWait)
	for {
		var text string
		err := chromedp.Run(ctx, chromedp.Evaluate(
			`document.body ? document.body.innerText : ""`, &text))
		if err == nil && b.ready.MatchString(text) {
			_ = sleepCtx(ctx, b.cfg.ReadyPoll)
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if err := sleepCtx(ctx, b.cfg.ReadyPoll); err != nil {
			return false
		}
	}
}

// Close shuts the browser down.
func (b *BrowserLoader) Close() {
	b.cancel()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
