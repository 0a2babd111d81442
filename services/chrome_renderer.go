package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeUA is the desktop Chrome user agent sent by the headless browser.
const ChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// RenderRequest describes one page visit.
type RenderRequest struct {
	URL string
	// FollowSelector, when set, clicks the first matching element (a search
	// result link) before waiting for content. A missing element is not an error.
	FollowSelector string
	// ReadyExpression is a JavaScript expression polled until truthy.
	ReadyExpression string
}

// RenderedPage is the captured state of a page after rendering.
type RenderedPage struct {
	URL                string
	HTML               string
	Text               string
	NavigationTimedOut bool
	RenderTimedOut     bool
	FollowedResult     bool
}

// PageRenderer renders a page and captures its HTML and visible text.
type PageRenderer interface {
	Render(ctx context.Context, req RenderRequest) (*RenderedPage, error)
}

// ChromeRenderer drives a headless Chrome through chromedp. Each Render call
// launches its own browser process and closes it before returning.
type ChromeRenderer struct {
	ExecPath      string
	UserAgent     string
	NavTimeout    time.Duration
	RenderTimeout time.Duration
	PollInterval  time.Duration
}

const (
	defaultNavTimeout    = 30 * time.Second
	defaultRenderTimeout = 15 * time.Second
	defaultPollInterval  = 500 * time.Millisecond
	followLookupTimeout  = 5 * time.Second
	captureTimeout       = 10 * time.Second
)

// NewChromeRenderer constructs a ChromeRenderer with default timeouts where zero.
func NewChromeRenderer(execPath string, navTimeout, renderTimeout time.Duration) *ChromeRenderer {
	if navTimeout <= 0 {
		navTimeout = defaultNavTimeout
	}
	if renderTimeout <= 0 {
		renderTimeout = defaultRenderTimeout
	}
	return &ChromeRenderer{
		ExecPath:      execPath,
		UserAgent:     ChromeUA,
		NavTimeout:    navTimeout,
		RenderTimeout: renderTimeout,
		PollInterval:  defaultPollInterval,
	}
}

// Render launches a browser, navigates, optionally follows the first result,
// waits for ReadyExpression and captures the page. Navigation and render
// timeouts are soft: the page is captured with whatever has loaded.
func (r *ChromeRenderer) Render(ctx context.Context, req RenderRequest) (*RenderedPage, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(r.UserAgent),
		chromedp.WindowSize(1366, 900),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// The first Run starts the browser, so launch failures surface here.
	if err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
	); err != nil {
		return nil, &BrowserLaunchError{Err: err}
	}

	page := &RenderedPage{URL: req.URL}

	if err := runWithTimeout(browserCtx, r.NavTimeout, chromedp.Navigate(req.URL)); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, fmt.Errorf("navigate %s: %w", req.URL, err)
		}
		page.NavigationTimedOut = true
		log.Printf("scraper: %v, continuing with partial content", &NavigationTimeoutError{URL: req.URL})
	}

	if req.FollowSelector != "" {
		page.FollowedResult = r.followFirstResult(browserCtx, req.FollowSelector)
	}

	if req.ReadyExpression != "" {
		var ready bool
		poll := chromedp.Poll(req.ReadyExpression, &ready, chromedp.WithPollingInterval(r.PollInterval))
		if err := runWithTimeout(browserCtx, r.RenderTimeout, poll); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			page.RenderTimedOut = true
			log.Printf("scraper: %v, extracting what rendered", &RenderTimeoutError{URL: req.URL})
		}
	}

	if err := runWithTimeout(browserCtx, captureTimeout,
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &page.Text),
	); err != nil {
		return nil, fmt.Errorf("capture %s: %w", req.URL, err)
	}
	return page, nil
}

// followFirstResult clicks selector when it exists and reports whether it did.
func (r *ChromeRenderer) followFirstResult(ctx context.Context, selector string) bool {
	var present bool
	hasLink := chromedp.Evaluate("document.querySelector("+strconv.Quote(selector)+") !== null", &present)
	if err := runWithTimeout(ctx, followLookupTimeout, hasLink); err != nil || !present {
		log.Printf("scraper: no result link %q, staying on search page", selector)
		return false
	}

	if err := runWithTimeout(ctx, r.NavTimeout,
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		log.Printf("scraper: following %q failed: %v", selector, err)
		return false
	}
	return true
}

func runWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}
