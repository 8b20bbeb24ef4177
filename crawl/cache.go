package crawl

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/boothcrawl"
)

// DefaultFreshness is how long a snapshot is served without scraping.
const DefaultFreshness = 6 * time.Hour

// FetchResult is the outcome of ContentCache.Fetch.
type FetchResult struct {
	Snapshot *boothcrawl.Snapshot

	// CacheHit is set when the snapshot was fresh and no scrape happened.
	CacheHit bool

	// Unchanged is set when a scrape returned content hashing the same as
	// the latest snapshot, which was reused.
	Unchanged bool
}

// ContentCache fetches pages through the snapshot store. Fresh snapshots
// are served without scraping; scraped content is normalized and hashed so
// that unchanged pages reuse their snapshot and its extraction memo.
type ContentCache struct {
	Fetcher    boothcrawl.Fetcher
	Snapshots  boothcrawl.SnapshotService
	Normalizer boothcrawl.ContentNormalizer

	// Freshness is the window within which the latest snapshot is served
	// without a scrape. Zero disables the window.
	Freshness time.Duration

	// RetryDelays are the backoff delays for transient scrape failures.
	// Nil means DefaultRetryDelays.
	RetryDelays []time.Duration

	// Logger, if set, is told about scrape retries.
	Logger LogFunc

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Fetch returns the current snapshot of url.
func (c *ContentCache) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	now := c.now()

	latest, err := c.Snapshots.FindLatestSnapshot(ctx, url)
	if err != nil && boothcrawl.ErrorCode(err) != boothcrawl.ENOTFOUND {
		return nil, err
	}

	// A hit leaves FetchedAt alone so the window runs from the last scrape.
	if latest != nil && c.Freshness > 0 && now.Sub(latest.FetchedAt) < c.Freshness {
		return &FetchResult{Snapshot: latest, CacheHit: true}, nil
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, url, c.Fetcher.Fetch, c.Logger, delays)
	if err != nil {
		return nil, err
	}

	hash := c.Hash(html)
	if latest != nil && latest.ContentHash == hash {
		if err := c.Snapshots.TouchSnapshot(ctx, latest.ID, now); err != nil {
			return nil, err
		}
		latest.FetchedAt = now
		return &FetchResult{Snapshot: latest, Unchanged: true}, nil
	}

	snapshot := &boothcrawl.Snapshot{
		URL:         url,
		Content:     html,
		ContentHash: hash,
		FetchedAt:   now,
	}
	if err := c.Snapshots.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return &FetchResult{Snapshot: snapshot}, nil
}

// Hash returns the content hash of html after normalization.
func (c *ContentCache) Hash(html string) string {
	if c.Normalizer != nil {
		html = c.Normalizer.Normalize(html)
	}
	return strconv.FormatUint(xxhash.Sum64String(html), 16)
}

func (c *ContentCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
