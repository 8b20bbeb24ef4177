package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/boothcrawl"
)

// Ensure LoggingSitemapService implements boothcrawl.SitemapService.
var _ boothcrawl.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   boothcrawl.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next boothcrawl.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs the number of
// pages found along with the size of the filter applied.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *boothcrawl.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", baseURL, "duration", time.Since(begin)}
		if filter != nil {
			attrs = append(attrs, "include", len(filter.Include), "exclude", len(filter.Exclude))
		}
		if err != nil {
			s.logger.WarnContext(ctx, "sitemap discovery failed", append(attrs, "err", err)...)
			return
		}
		s.logger.InfoContext(ctx, "sitemap discovery", append(attrs, "pages", len(urls))...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
