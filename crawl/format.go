package crawl

import (
	"fmt"

	"github.com/fwojciec/boothcrawl"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatCounts formats run counts for a one-line progress display.
func FormatCounts(c boothcrawl.Counts) string {
	s := fmt.Sprintf("%d pages, %d candidates, %d valid, %d rejected, %d added, %d updated",
		c.Pages, c.Candidates, c.Valid, c.Rejected, c.Added, c.Updated)
	if c.FailedPages > 0 {
		s += fmt.Sprintf(", %d pages failed", c.FailedPages)
	}
	return s
}
