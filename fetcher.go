package boothcrawl

import "context"

// Fetcher retrieves page HTML from URLs. It is the scraping service.
//
// Implementations classify failures: ETRANSIENT for timeouts, rate limiting
// and server errors, EPERMANENT for missing or blocked pages and invalid
// URLs. Context errors are returned unwrapped.
type Fetcher interface {
	// Fetch retrieves the HTML at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
