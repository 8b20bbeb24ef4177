// Package http provides HTTP implementations of boothcrawl.Fetcher and
// boothcrawl.SitemapService for sources that don't require JavaScript
// rendering.
package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 15 * time.Second

// DefaultMaxBodySize caps the number of bytes read from a response.
const DefaultMaxBodySize = 8 << 20

// DefaultUserAgent identifies the crawler to origin sites.
const DefaultUserAgent = "boothcrawl/1.0 (+https://github.com/fwojciec/boothcrawl)"

// Ensure Fetcher implements boothcrawl.Fetcher at compile time.
var _ boothcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// Failures are classified as ETRANSIENT or EPERMANENT.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the response size. Larger bodies are truncated.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", boothcrawl.Errorf(boothcrawl.EPERMANENT, "invalid URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", boothcrawl.WrapError(boothcrawl.EPERMANENT, err, "invalid request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", StatusError(rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", classifyError(ctx, rawURL, err)
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// StatusError classifies a non-200 HTTP status. Throttling, timeouts and
// server errors are transient; every other client error is permanent.
func StatusError(rawURL string, code int) error {
	msg := fmt.Sprintf("HTTP %d for %s", code, rawURL)
	switch {
	case code == http.StatusRequestTimeout,
		code == http.StatusTooEarly,
		code == http.StatusTooManyRequests,
		code >= 500:
		return boothcrawl.Errorf(boothcrawl.ETRANSIENT, "%s", msg)
	default:
		return boothcrawl.Errorf(boothcrawl.EPERMANENT, "%s", msg)
	}
}

// classifyError maps a transport error to an application error code.
// Context errors are returned unwrapped so callers can detect cancellation.
func classifyError(ctx context.Context, rawURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return boothcrawl.WrapError(boothcrawl.EPERMANENT, err, "host not found for %s", rawURL)
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return boothcrawl.WrapError(boothcrawl.EPERMANENT, err, "certificate rejected for %s", rawURL)
	}

	return boothcrawl.WrapError(boothcrawl.ETRANSIENT, err, "fetching %s", rawURL)
}
