package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/boothcrawl"
	"golang.org/x/time/rate"
)

var _ boothcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DefaultRequestsPerSecond is the default per-host fetch rate.
const DefaultRequestsPerSecond = 2

// DomainLimiter provides per-host rate limiting using token buckets.
// Pages of one source usually share a host, so the limiter is what keeps
// concurrent page fetches polite.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// per host with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
