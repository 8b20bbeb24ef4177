// Package slog provides log/slog decorators for the boothcrawl services.
// Each decorator logs one line per call with its duration and error.
package slog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Ensure LoggingFetcher implements boothcrawl.Fetcher.
var _ boothcrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   boothcrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next boothcrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation. Failures
// are logged at warn level with their error code; cancellations at debug.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		switch {
		case err == nil:
			f.logger.InfoContext(ctx, "fetch", append(attrs, "bytes", len(html))...)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			f.logger.DebugContext(ctx, "fetch interrupted", append(attrs, "err", err)...)
		default:
			f.logger.WarnContext(ctx, "fetch failed", append(attrs, "code", boothcrawl.ErrorCode(err), "err", err)...)
		}
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
