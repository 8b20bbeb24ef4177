// Package rod provides a headless-browser implementation of
// boothcrawl.Fetcher for sources whose listings are rendered by JavaScript.
package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/boothcrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single navigation including page load.
const DefaultFetchTimeout = 15 * time.Second

// DefaultRecycleAfter is the number of pages rendered before the browser is
// restarted. Chrome's baseline memory grows with use and never returns.
const DefaultRecycleAfter = 75

// Ensure Fetcher implements boothcrawl.Fetcher at compile time.
var _ boothcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a headless Chrome browser.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout      time.Duration
	recycleAfter int

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int
	inflight sync.WaitGroup
	closed   bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page navigation timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRecycleAfter sets how many pages are rendered before the browser is
// restarted.
func WithRecycleAfter(n int) Option {
	return func(f *Fetcher) {
		f.recycleAfter = n
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		recycleAfter: DefaultRecycleAfter,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.acquire()
	if err != nil {
		return "", err
	}
	defer f.inflight.Done()

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", boothcrawl.WrapError(boothcrawl.ETRANSIENT, err, "opening page")
	}
	defer page.Close()

	page = page.Context(fetchCtx)

	if err := page.Navigate(url); err != nil {
		return "", classifyError(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", classifyError(ctx, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", classifyError(ctx, url, err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	f.inflight.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown()
}

// acquire returns the current browser, restarting it first when the
// recycle threshold is reached and no page is in flight.
func (f *Fetcher) acquire() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "fetcher is closed")
	}

	if f.recycleAfter > 0 && f.pages >= f.recycleAfter {
		f.inflight.Wait()
		if err := f.shutdown(); err != nil {
			return nil, fmt.Errorf("recycling browser: %w", err)
		}
		if err := f.launch(); err != nil {
			return nil, err
		}
	}

	f.pages++
	f.inflight.Add(1)
	return f.browser, nil
}

// launch starts a browser with stability flags. Must be called with mu held
// or before the Fetcher is shared.
func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	f.pages = 0
	return nil
}

// shutdown closes the browser and kills its process. Must be called with
// mu held.
func (f *Fetcher) shutdown() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// classifyError maps a browser error to an application error code.
// Unresolvable hosts and malformed URLs are permanent; everything else,
// including the per-page timeout, is transient.
func classifyError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var navErr *rod.NavigationError
	if errors.As(err, &navErr) && isPermanentReason(navErr.Reason) {
		return boothcrawl.WrapError(boothcrawl.EPERMANENT, err, "navigating to %s", url)
	}
	return boothcrawl.WrapError(boothcrawl.ETRANSIENT, err, "navigating to %s", url)
}

func isPermanentReason(reason string) bool {
	for _, r := range []string{"ERR_NAME_NOT_RESOLVED", "ERR_INVALID_URL", "ERR_UNKNOWN_URL_SCHEME", "ERR_CERT_"} {
		if strings.Contains(reason, r) {
			return true
		}
	}
	return false
}
