package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Browser fetches pages through headless Chrome for sources that only
// render results with JavaScript. The allocator is started lazily on first
// use and shared by all fetches.
type Browser struct {
	logger  *slog.Logger
	timeout time.Duration

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewBrowser creates a browser fetcher. Chrome is not launched until the
// first FetchHTML call.
func NewBrowser(timeout time.Duration, logger *slog.Logger) *Browser {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Browser{logger: logger, timeout: timeout}
}

// allocator lazily starts the shared Chrome allocator.
func (b *Browser) allocator() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.allocCtx != nil {
		return b.allocCtx
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
	)
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	if b.logger != nil {
		b.logger.Info("headless browser allocator started")
	}
	return b.allocCtx
}

// FetchHTML loads the page, waits for the body to render, and returns the
// resulting DOM as a goquery document.
func (b *Browser) FetchHTML(ctx context.Context, rawURL string) (*goquery.Document, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocator())
	defer cancelTab()

	runCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()

	// Honor the caller's cancellation too.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("browser fetch %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// Close shuts down the Chrome allocator if it was started.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCtx = nil
		b.allocCancel = nil
	}
}
