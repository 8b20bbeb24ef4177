package boothcrawl

import (
	"context"
	"regexp"
)

// SitemapService discovers a source's pages from its website's sitemaps.
type SitemapService interface {
	// DiscoverURLs returns the page URLs listed for baseURL's site. Sitemaps
	// named in robots.txt are preferred over /sitemap.xml, and sitemap
	// indexes are followed. A nil filter keeps every URL.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter restricts discovered URLs to a source's venue pages.
// A URL passes when it matches some Include pattern (or Include is empty)
// and no Exclude pattern.
type URLFilter struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// Match reports whether url passes the filter. A nil filter passes all URLs.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 && !matchAny(f.Include, url) {
		return false
	}
	return !matchAny(f.Exclude, url)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
