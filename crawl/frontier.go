package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/boothcrawl"
	"github.com/fwojciec/boothcrawl/bloom"
)

var _ boothcrawl.URLFrontier = (*Frontier)(nil)

// Frontier configuration for a single source run.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.001
)

// Frontier is the page queue of one source run. URLs are deduplicated with
// a Bloom filter and popped in insertion order. It is safe for concurrent
// use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []string
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{seen: bloom.NewFilter(n, fpRate)}
}

// Push adds a URL to the frontier. URLs differing only by fragment are
// duplicates; the fragment is stripped before queueing.
func (f *Frontier) Push(rawURL string) bool {
	url := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestAndAdd(url) {
		return false
	}
	f.queue = append(f.queue, url)
	return true
}

// Pop returns the oldest queued URL.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Drain pops up to n URLs.
func (f *Frontier) Drain(n int) []string {
	var urls []string
	for len(urls) < n {
		url, ok := f.Pop()
		if !ok {
			break
		}
		urls = append(urls, url)
	}
	return urls
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether the URL has been queued before.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(rawURL))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
